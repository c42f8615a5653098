package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/market/app/port"
	"Foam/internal/market/dc"
	"Foam/internal/market/entity"
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

// MarketActor 是全局唯一的订单簿所有者。成交后的买方入账走
// NotifyFill 回调（卖方托管已在挂单时扣掉，Credit 为 0 只加热度）。
type MarketActor struct {
	state     State
	dc        *dc.MarketDC
	book      *entity.Book
	reg       *actorref.Registry
	flushStop chan struct{}
}

type flushTick struct{}

func (flushTick) NotInfluenceReceiveTimeout() {}

func NewMarketActor(repo port.MarketRepository, reg *actorref.Registry) *MarketActor {
	return &MarketActor{
		state: None,
		dc:    dc.NewMarketDC(repo),
		reg:   reg,
	}
}

func (m *MarketActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		m.state = Init
		m.init(ctx)
		return
	case *actor.Stopping:
		m.stopFlushLoop()
		closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.dc.Close(closeCtx); err != nil {
			ctx.Logger().Error("market dc close failed", "err", err)
		}
		m.state = Stopping
		return
	case *actor.Stopped:
		m.stopFlushLoop()
		m.state = Offline
		return
	case *actor.Restarting:
		m.stopFlushLoop()
		m.state = Init
		return
	case flushTick:
		if m.state != Online {
			return
		}
		m.dc.Flush(context.TODO())
		return
	case messages.MarketPlaceOrder:
		if m.state != Online {
			ctx.Respond(messages.MarketPlaceOrderResult{Result: messages.FailResult(messages.CodeUnavailable, "market not online")})
			return
		}
		m.handlePlace(ctx, msg)
	case messages.MarketCancelOrder:
		if m.state != Online {
			ctx.Respond(messages.MarketCancelOrderResult{Result: messages.FailResult(messages.CodeUnavailable, "market not online")})
			return
		}
		m.handleCancel(ctx, msg)
	case messages.MarketStateQuery:
		if m.state != Online {
			ctx.Respond(messages.MarketStateResult{Result: messages.FailResult(messages.CodeUnavailable, "market not online")})
			return
		}
		ctx.Respond(messages.MarketStateResult{Result: messages.OKResult(), Market: m.book.View(msg.WithHistory)})
	default:
		return
	}
}

func (m *MarketActor) handlePlace(ctx actor.Context, msg messages.MarketPlaceOrder) {
	if msg.NodeID == "" || msg.Price <= 0 || msg.Amount <= 0 ||
		(msg.Side != messages.SideBid && msg.Side != messages.SideAsk) {
		ctx.Respond(messages.MarketPlaceOrderResult{Result: messages.FailResult(messages.CodeValidation, "invalid order")})
		return
	}

	order, fills := m.book.Place(msg.NodeID, msg.Side, msg.Price, msg.Amount, time.Now())

	touched := map[string]struct{}{msg.NodeID: {}}
	for _, f := range fills {
		buyer, seller := f.Taker, f.Maker
		if msg.Side == messages.SideAsk {
			buyer, seller = f.Maker, f.Taker
		}
		ctx.Send(m.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: buyer,
			Msg:    messages.NotifyFill{OrderID: order.ID, Side: messages.SideBid, Price: f.Price, Amount: f.Amount, Credit: f.Amount},
		})
		ctx.Send(m.reg.NodeManager, &messages.NodeEnvelope{
			NodeID: seller,
			Msg:    messages.NotifyFill{OrderID: order.ID, Side: messages.SideAsk, Price: f.Price, Amount: f.Amount},
		})
		touched[f.Maker] = struct{}{}
		touched[f.Taker] = struct{}{}
	}

	m.pushBook(touched)
	ctx.Respond(messages.MarketPlaceOrderResult{Result: messages.OKResult(), Order: order, Fills: fills})
}

func (m *MarketActor) handleCancel(ctx actor.Context, msg messages.MarketCancelOrder) {
	if msg.NodeID == "" || msg.OrderID == "" {
		ctx.Respond(messages.MarketCancelOrderResult{Result: messages.FailResult(messages.CodeValidation, "invalid cancel")})
		return
	}
	side, refund, ok := m.book.Cancel(msg.OrderID, msg.NodeID)
	if !ok {
		ctx.Respond(messages.MarketCancelOrderResult{Result: messages.FailResult(messages.CodeNotFound, "unknown order")})
		return
	}

	m.pushBook(map[string]struct{}{msg.NodeID: {}})
	ctx.Respond(messages.MarketCancelOrderResult{Result: messages.OKResult(), Side: side, Refund: refund})
}

// pushBook 把最新买卖盘推给本次操作涉及的在线会话。
func (m *MarketActor) pushBook(nodeIDs map[string]struct{}) {
	view := m.book.View(false)
	payload := map[string]any{"bids": view.Bids, "asks": view.Asks, "lastPrice": view.LastPrice}
	for nodeID := range nodeIDs {
		m.reg.Push(nodeID, "market_update", payload)
	}
}

func (m *MarketActor) init(ctx actor.Context) {
	b, err := m.dc.Load(context.TODO())
	if err != nil {
		ctx.Logger().Error("market load failed", "err", err)
		m.state = Stopping
		ctx.Stop(ctx.Self())
		return
	}
	if b == nil {
		b = entity.NewBook(m.reg.Game.PriceHistoryLimit)
		m.dc.Attach(b)
	}
	m.state = Online
	m.book = b
	m.startFlushLoop(ctx)
}

func (m *MarketActor) startFlushLoop(ctx actor.Context) {
	if m.flushStop != nil {
		return
	}
	every := m.dc.FlushEvery()
	if every <= 0 {
		return
	}
	m.flushStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	go func(stop <-chan struct{}) {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, flushTick{})
			case <-stop:
				return
			}
		}
	}(m.flushStop)
}

func (m *MarketActor) stopFlushLoop() {
	if m.flushStop != nil {
		close(m.flushStop)
		m.flushStop = nil
	}
}
