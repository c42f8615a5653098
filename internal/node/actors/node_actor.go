package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/node/app/port"
	"Foam/internal/node/dc"
	"Foam/internal/node/entity"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// NodeActor 是单个节点实体的唯一写入方。
// 实体可能为 nil：用户名从未认证过时 actor 照常在线，除 authenticate
// 与公开查询外的命令一律回 NOT_FOUND。
type NodeActor struct {
	state      State
	nodeID     string
	dc         *dc.NodeDC
	entity     *entity.Node
	reg        *actorref.Registry
	dispatcher *Dispatcher

	flushStop   chan struct{}
	produceStop chan struct{}
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

type produceTick struct{}

func (produceTick) NotInfluenceReceiveTimeout() {}

func NewNodeActor(nodeID string, repo port.NodeRepository, reg *actorref.Registry) *NodeActor {
	return &NodeActor{
		state:      None,
		nodeID:     nodeID,
		dc:         dc.NewNodeDC(repo),
		reg:        reg,
		dispatcher: NewDispatcher(),
	}
}

func (n *NodeActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		n.state = Init
		n.init(ctx)
		return
	case *actor.Stopping:
		n.stopLoops()
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := n.dc.Close(closeCtx); err != nil {
			ctx.Logger().Error("node dc close failed", "node_id", n.nodeID, "err", err)
		}
		n.state = Stopping
		return
	case *actor.Stopped:
		n.stopLoops()
		n.state = Offline
		return
	case *actor.Restarting:
		n.stopLoops()
		n.state = Init
		return
	case flushTick:
		if n.state != Online {
			return
		}
		n.dc.Flush(context.TODO())
		return
	case produceTick:
		if n.state != Online {
			return
		}
		n.onProduceTick(ctx)
		return
	case *messages.NodeEnvelope:
		if msg == nil {
			ctx.Respond(messages.FailResult(messages.CodeValidation, "nil envelope"))
			return
		}
		if n.state != Online {
			ctx.Respond(messages.FailResult(messages.CodeUnavailable, "node not online"))
			return
		}
		n.dispatcher.Dispatch(ctx, n, msg.Msg)
	default:
		return
	}
}

func (n *NodeActor) init(ctx actor.Context) {
	e, err := n.dc.Load(context.TODO(), n.nodeID)
	if err != nil {
		ctx.Logger().Error("node load failed", "node_id", n.nodeID, "err", err)
		n.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	n.state = Online
	n.entity = e
	n.startLoops(ctx)
}

// onProduceTick 生产入账 + 热度衰减 + 清理过期 pending，最后把 tick 推给在线会话。
func (n *NodeActor) onProduceTick(ctx actor.Context) {
	if n.entity == nil {
		return
	}
	n.entity.ProduceTick()

	ttl := time.Duration(n.reg.Game.PendingTTLS) * time.Second
	expired := n.entity.ExpirePending(ttl, time.Now())
	for _, p := range expired {
		ctx.Logger().Info("pending link expired",
			"node_id", n.nodeID, "link_id", p.LinkID, "peer", p.Peer)
		n.reg.Push(n.nodeID, "link_rejected", map[string]any{"linkId": p.LinkID})
	}

	n.reg.Push(n.nodeID, "tick", map[string]any{
		"balance": n.entity.Balance(),
		"heat":    n.entity.Heat(),
	})
}

func (n *NodeActor) NodeID() string       { return n.nodeID }
func (n *NodeActor) Entity() *entity.Node { return n.entity }
func (n *NodeActor) DC() *dc.NodeDC       { return n.dc }
func (n *NodeActor) askTimeout() time.Duration {
	return time.Duration(n.reg.Game.EntityAskTimeoutMS) * time.Millisecond
}

func (n *NodeActor) startLoops(ctx actor.Context) {
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	if n.flushStop == nil {
		if every := n.dc.FlushEvery(); every > 0 {
			n.flushStop = make(chan struct{})
			go tickLoop(n.flushStop, every, func() { root.Send(self, flushTick{}) })
		}
	}
	if n.produceStop == nil {
		if every := time.Duration(n.reg.Game.ProductionTickS) * time.Second; every > 0 {
			n.produceStop = make(chan struct{})
			go tickLoop(n.produceStop, every, func() { root.Send(self, produceTick{}) })
		}
	}
}

func (n *NodeActor) stopLoops() {
	if n.flushStop != nil {
		close(n.flushStop)
		n.flushStop = nil
	}
	if n.produceStop != nil {
		close(n.produceStop)
		n.produceStop = nil
	}
}

func tickLoop(stop <-chan struct{}, every time.Duration, fire func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fire()
		case <-stop:
			return
		}
	}
}
