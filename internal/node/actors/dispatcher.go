package actors

import (
	"reflect"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/shared/actor/messages"
)

// Dispatcher 按消息具体类型分发到 handler，信封里的消息是值类型结构体。
type Dispatcher struct {
	handlers map[reflect.Type]func(ctx actor.Context, n *NodeActor, msg any)
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]func(ctx actor.Context, n *NodeActor, msg any)),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, NH.HandleAuthenticate)
	register(d, NH.HandleRequestLink)
	register(d, NH.HandleRespondLink)
	register(d, NH.HandlePlaceOrder)
	register(d, NH.HandleCancelOrder)
	register(d, NH.HandleInvest)
	register(d, NH.HandleUpgradeLink)
	register(d, NH.HandleStateQuery)

	register(d, NH.HandleNotifyLinkRequest)
	register(d, NH.HandlePublicStateQuery)
	register(d, NH.HandleNotifyLinkEstablished)
	register(d, NH.HandleNotifyLinkRejected)
	register(d, NH.HandleCreditBalance)
	register(d, NH.HandleAdjustHeat)
	register(d, NH.HandleNotifyControlChanged)
	register(d, NH.HandleNotifyTollReceived)
	register(d, NH.HandleNotifyFill)
	register(d, NH.HandleNotifyPointDiscovered)
}

func register[T any](d *Dispatcher, fn func(ctx actor.Context, n *NodeActor, msg T)) {
	var zero T
	d.handlers[reflect.TypeOf(zero)] = func(ctx actor.Context, n *NodeActor, msg any) {
		fn(ctx, n, msg.(T))
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, n *NodeActor, msg any) {
	if msg == nil {
		ctx.Respond(messages.FailResult(messages.CodeValidation, "empty message"))
		return
	}
	h, ok := d.handlers[reflect.TypeOf(msg)]
	if !ok {
		ctx.Respond(messages.FailResult(messages.CodeValidation, "no handler for message"))
		return
	}
	h(ctx, n, msg)
}
