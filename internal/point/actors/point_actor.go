package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/point/app/port"
	"Foam/internal/point/dc"
	"Foam/internal/point/entity"
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

// PointActor 持有单个争夺点。衰减检查无条件重排：即便上一轮没有
// 触发衰减，下一轮照常检查。
type PointActor struct {
	state   State
	pointID string
	dc      *dc.PointDC
	entity  *entity.Point
	reg     *actorref.Registry

	flushStop chan struct{}
	decayStop chan struct{}
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

type decayTick struct{}

func (decayTick) NotInfluenceReceiveTimeout() {}

func NewPointActor(pointID string, repo port.PointRepository, reg *actorref.Registry) *PointActor {
	return &PointActor{
		state:   None,
		pointID: pointID,
		dc:      dc.NewPointDC(repo),
		reg:     reg,
	}
}

func (p *PointActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopLoops()
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.dc.Close(closeCtx); err != nil {
			ctx.Logger().Error("point dc close failed", "point_id", p.pointID, "err", err)
		}
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopLoops()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopLoops()
		p.state = Init
		return
	case flushTick:
		if p.state != Online {
			return
		}
		p.dc.Flush(context.TODO())
		return
	case decayTick:
		if p.state != Online {
			return
		}
		p.onDecayTick(ctx)
		return
	case *messages.PointEnvelope:
		if msg == nil {
			ctx.Respond(messages.FailResult(messages.CodeValidation, "nil envelope"))
			return
		}
		if p.state != Online {
			ctx.Respond(messages.FailResult(messages.CodeUnavailable, "point not online"))
			return
		}
		p.handle(ctx, msg.Msg)
	default:
		return
	}
}

func (p *PointActor) handle(ctx actor.Context, msg any) {
	switch m := msg.(type) {
	case messages.CreatePoint:
		p.handleCreate(ctx, m)
	case messages.InvestStake:
		p.handleInvest(ctx, m)
	case messages.CollectToll:
		p.handleCollectToll(ctx, m)
	case messages.PointStateQuery:
		if p.entity == nil {
			ctx.Respond(messages.PointStateResult{Result: messages.FailResult(messages.CodeNotFound, "unknown point")})
			return
		}
		ctx.Respond(messages.PointStateResult{Result: messages.OKResult(), Point: p.entity.View()})
	default:
		if ctx.Sender() != nil {
			ctx.Respond(messages.FailResult(messages.CodeValidation, "no handler for message"))
		}
	}
}

// handleCreate 建点 + 通知四个参与节点 + 把交点登记到两条链路上。
// 再次发现同一对链路时实体已在，静默跳过。
func (p *PointActor) handleCreate(ctx actor.Context, msg messages.CreatePoint) {
	if p.entity != nil {
		return
	}
	e := entity.NewPoint(msg.ID, msg.Position, msg.LinkIDs, msg.Participants, time.Now())
	p.entity = e
	p.dc.Attach(e)
	p.dc.Flush(context.TODO())
	p.startDecayLoop(ctx)

	view := e.View()
	for _, linkID := range msg.LinkIDs {
		ctx.Send(p.reg.LinkManager, &messages.LinkEnvelope{
			LinkID: linkID,
			Msg:    messages.RegisterPoint{PointID: msg.ID},
		})
	}
	for _, nodeID := range msg.Participants {
		ctx.Send(p.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: nodeID,
			Msg:    messages.NotifyPointDiscovered{Point: view},
		})
	}
}

func (p *PointActor) handleInvest(ctx actor.Context, msg messages.InvestStake) {
	if p.entity == nil {
		ctx.Respond(messages.InvestStakeResult{Result: messages.FailResult(messages.CodeNotFound, "unknown point")})
		return
	}
	if msg.NodeID == "" || msg.Amount <= 0 {
		ctx.Respond(messages.InvestStakeResult{Result: messages.FailResult(messages.CodeValidation, "invalid stake")})
		return
	}

	prev := p.entity.Invest(msg.NodeID, msg.Amount, time.Now())
	p.notifyControlChange(ctx, prev, msg.NodeID)
	p.pushPointUpdate()

	ctx.Respond(messages.InvestStakeResult{Result: messages.OKResult(), Point: p.entity.View()})
}

// handleCollectToll 过路费钩子：金额为 0 或无控制者时 no-op。
func (p *PointActor) handleCollectToll(ctx actor.Context, msg messages.CollectToll) {
	if p.entity == nil {
		return
	}
	controller, amount, ok := p.entity.CollectToll(msg.LinkID, msg.Flow, p.reg.Game.TollRate)
	if !ok {
		return
	}
	ctx.Send(p.reg.NodeManager, &messages.NodeEnvelope{
		NodeID: controller,
		Msg:    messages.NotifyTollReceived{PointID: p.pointID, Amount: amount},
	})
}

func (p *PointActor) onDecayTick(ctx actor.Context) {
	if p.entity == nil {
		return
	}
	interval := time.Duration(p.reg.Game.DecayIntervalS) * time.Second
	prev, decayed := p.entity.Decay(p.reg.Game.DecayRate, interval, time.Now())
	if !decayed {
		return
	}
	p.notifyControlChange(ctx, prev, "")
	p.pushPointUpdate()
}

// notifyControlChange 控制权易主时回调新旧控制者。
// 旧控制者不可达只记日志不重试，下一轮衰减会自我修正（最终一致）。
func (p *PointActor) notifyControlChange(ctx actor.Context, prev, attacker string) {
	cur := p.entity.Controller()
	if cur == prev {
		return
	}
	if prev != "" {
		ctx.Send(p.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: prev,
			Msg:    messages.NotifyControlChanged{PointID: p.pointID, IsController: false, Attacker: attacker},
		})
	}
	if cur != "" {
		ctx.Send(p.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: cur,
			Msg:    messages.NotifyControlChanged{PointID: p.pointID, IsController: true},
		})
	}
}

func (p *PointActor) pushPointUpdate() {
	view := p.entity.View()
	for _, nodeID := range p.entity.Participants() {
		p.reg.Push(nodeID, "point_update", map[string]any{"point": view})
	}
}

func (p *PointActor) init(ctx actor.Context) {
	e, err := p.dc.Load(context.TODO(), p.pointID)
	if err != nil {
		ctx.Logger().Error("point load failed", "point_id", p.pointID, "err", err)
		p.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	p.state = Online
	p.entity = e
	p.startFlushLoop(ctx)
	if e != nil {
		p.startDecayLoop(ctx)
	}
}

func (p *PointActor) startFlushLoop(ctx actor.Context) {
	if p.flushStop != nil {
		return
	}
	every := p.dc.FlushEvery()
	if every <= 0 {
		return
	}
	p.flushStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	go tickLoop(p.flushStop, every, func() { root.Send(self, flushTick{}) })
}

func (p *PointActor) startDecayLoop(ctx actor.Context) {
	if p.decayStop != nil {
		return
	}
	every := time.Duration(p.reg.Game.DecayIntervalS) * time.Second
	if every <= 0 {
		return
	}
	p.decayStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	go tickLoop(p.decayStop, every, func() { root.Send(self, decayTick{}) })
}

func (p *PointActor) stopLoops() {
	if p.flushStop != nil {
		close(p.flushStop)
		p.flushStop = nil
	}
	if p.decayStop != nil {
		close(p.decayStop)
		p.decayStop = nil
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
