package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/link/app/port"
	"Foam/internal/link/dc"
	"Foam/internal/link/entity"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

// LinkActor 消息少，不走反射分发，直接 switch。
// 流量 tick 把满容量流量报给链路上已登记的交点（过路费钩子的自动触发方）。
type LinkActor struct {
	state  State
	linkID string
	dc     *dc.LinkDC
	entity *entity.Link
	reg    *actorref.Registry

	flushStop chan struct{}
	flowStop  chan struct{}
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

type flowTick struct{}

func (flowTick) NotInfluenceReceiveTimeout() {}

func NewLinkActor(linkID string, repo port.LinkRepository, reg *actorref.Registry) *LinkActor {
	return &LinkActor{
		state:  None,
		linkID: linkID,
		dc:     dc.NewLinkDC(repo),
		reg:    reg,
	}
}

func (l *LinkActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		l.state = Init
		l.init(ctx)
		return
	case *actor.Stopping:
		l.stopLoops()
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := l.dc.Close(closeCtx); err != nil {
			ctx.Logger().Error("link dc close failed", "link_id", l.linkID, "err", err)
		}
		l.state = Stopping
		return
	case *actor.Stopped:
		l.stopLoops()
		l.state = Offline
		return
	case *actor.Restarting:
		l.stopLoops()
		l.state = Init
		return
	case flushTick:
		if l.state != Online {
			return
		}
		l.dc.Flush(context.TODO())
		return
	case flowTick:
		if l.state != Online {
			return
		}
		l.onFlowTick(ctx)
		return
	case *messages.LinkEnvelope:
		if msg == nil {
			ctx.Respond(messages.FailResult(messages.CodeValidation, "nil envelope"))
			return
		}
		if l.state != Online {
			ctx.Respond(messages.FailResult(messages.CodeUnavailable, "link not online"))
			return
		}
		l.handle(ctx, msg.Msg)
	default:
		return
	}
}

func (l *LinkActor) handle(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case messages.CreateLink:
		l.handleCreate(ctx, m)
	case messages.LinkStateQuery:
		if l.entity == nil {
			ctx.Respond(messages.LinkStateResult{Result: messages.FailResult(messages.CodeNotFound, "unknown link")})
			return
		}
		ctx.Respond(messages.LinkStateResult{Result: messages.OKResult(), Link: l.entity.View()})
	case messages.UpgradeCapacity:
		l.handleUpgrade(ctx, m)
	case messages.RegisterPoint:
		if l.entity == nil {
			return
		}
		l.entity.RegisterPoint(m.PointID)
	default:
		ctx.Respond(messages.FailResult(messages.CodeValidation, "no handler for message"))
	}
}

// handleCreate 幂等：同 id 重复创建视为重投，直接回成功。
func (l *LinkActor) handleCreate(ctx actor.Context, msg messages.CreateLink) {
	if l.entity != nil {
		ctx.Respond(messages.CreateLinkResult{Result: messages.OKResult()})
		return
	}
	v := msg.Link
	if v.ID != l.linkID || v.NodeA == "" || v.NodeB == "" || v.NodeA == v.NodeB {
		ctx.Respond(messages.CreateLinkResult{Result: messages.FailResult(messages.CodeValidation, "invalid link record")})
		return
	}

	e := entity.NewLink(v.ID, v.NodeA, v.NodeB,
		geo.LatLng{Lat: v.PathA.Lat, Lng: v.PathA.Lng},
		geo.LatLng{Lat: v.PathB.Lat, Lng: v.PathB.Lng},
		v.Capacity, time.Now())
	e.Activate()
	l.entity = e
	l.dc.Attach(e)
	l.dc.Flush(context.TODO())
	l.startFlowLoop(ctx)

	ctx.Logger().Info("link established", "link_id", l.linkID, "node_a", v.NodeA, "node_b", v.NodeB)
	ctx.Respond(messages.CreateLinkResult{Result: messages.OKResult()})
}

func (l *LinkActor) handleUpgrade(ctx actor.Context, msg messages.UpgradeCapacity) {
	if l.entity == nil {
		ctx.Respond(messages.UpgradeCapacityResult{Result: messages.FailResult(messages.CodeNotFound, "unknown link")})
		return
	}
	capa, ok := l.entity.Upgrade(msg.Step)
	if !ok {
		ctx.Respond(messages.UpgradeCapacityResult{Result: messages.FailResult(messages.CodeValidation, "link not upgradable")})
		return
	}
	ctx.Respond(messages.UpgradeCapacityResult{Result: messages.OKResult(), Capacity: capa})
}

// onFlowTick 把当前流量报给每个已登记交点；交点无控制者时在交点侧 no-op。
func (l *LinkActor) onFlowTick(ctx actor.Context) {
	if l.entity == nil {
		return
	}
	flow := l.entity.Flow()
	if flow <= 0 {
		return
	}
	for _, pointID := range l.entity.PointIDs() {
		ctx.Send(l.reg.PointManager, &messages.PointEnvelope{
			PointID: pointID,
			Msg:     messages.CollectToll{LinkID: l.linkID, Flow: flow},
		})
	}
}

func (l *LinkActor) init(ctx actor.Context) {
	e, err := l.dc.Load(context.TODO(), l.linkID)
	if err != nil {
		ctx.Logger().Error("link load failed", "link_id", l.linkID, "err", err)
		l.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	l.state = Online
	l.entity = e
	l.startFlushLoop(ctx)
	if e != nil {
		l.startFlowLoop(ctx)
	}
}

func (l *LinkActor) startFlushLoop(ctx actor.Context) {
	if l.flushStop != nil {
		return
	}
	every := l.dc.FlushEvery()
	if every <= 0 {
		return
	}
	l.flushStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	go tickLoop(l.flushStop, every, func() { root.Send(self, flushTick{}) })
}

func (l *LinkActor) startFlowLoop(ctx actor.Context) {
	if l.flowStop != nil {
		return
	}
	every := time.Duration(l.reg.Game.FlowTickS) * time.Second
	if every <= 0 {
		return
	}
	l.flowStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	go tickLoop(l.flowStop, every, func() { root.Send(self, flowTick{}) })
}

func (l *LinkActor) stopLoops() {
	if l.flushStop != nil {
		close(l.flushStop)
		l.flushStop = nil
	}
	if l.flowStop != nil {
		close(l.flowStop)
		l.flowStop = nil
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
