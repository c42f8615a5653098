// Package actor 对外暴露节点实体的同步调用门面：
// 网关/HTTP 拿着 Runtime 发请求，内部走 manager -> 子 actor 的邮箱串行化。
package actor

import (
	"context"
	"errors"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/transport"
)

const defaultAskTimeout = 3 * time.Second

type RuntimeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type Runtime struct {
	reg     *actorref.Registry
	timeout time.Duration
}

func NewRuntime(reg *actorref.Registry, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}
	return &Runtime{reg: reg, timeout: askTimeout}
}

func (r *Runtime) ask(ctx context.Context, pid *protoactor.PID, msg any) (any, error) {
	if r == nil || r.reg == nil || r.reg.System == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime 未初始化"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid 为空"}
	}

	future := r.reg.System.Root.RequestFuture(pid, msg, r.timeoutFromContext(ctx))
	res, err := future.Result()
	if err != nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor 请求失败", Cause: err}
	}
	return res, nil
}

func (r *Runtime) askNode(ctx context.Context, nodeID string, msg any) (any, error) {
	if nodeID == "" {
		return nil, &RuntimeError{Code: transport.InvalidParam, Message: "node id 不能为空"}
	}
	return r.ask(ctx, r.reg.NodeManager, &messages.NodeEnvelope{NodeID: nodeID, Msg: msg})
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}

func (r *Runtime) Authenticate(ctx context.Context, name string) (messages.AuthenticateResult, error) {
	res, err := r.askNode(ctx, name, messages.AuthenticateNode{Name: name})
	if err != nil {
		return messages.AuthenticateResult{}, err
	}
	return typed[messages.AuthenticateResult](res)
}

func (r *Runtime) RequestLink(ctx context.Context, nodeID, to string) (messages.NodeRequestLinkResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeRequestLink{To: to})
	if err != nil {
		return messages.NodeRequestLinkResult{}, err
	}
	return typed[messages.NodeRequestLinkResult](res)
}

func (r *Runtime) RespondLink(ctx context.Context, nodeID, linkID string, accept bool) (messages.NodeRespondLinkResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeRespondLink{LinkID: linkID, Accept: accept})
	if err != nil {
		return messages.NodeRespondLinkResult{}, err
	}
	return typed[messages.NodeRespondLinkResult](res)
}

func (r *Runtime) PlaceOrder(ctx context.Context, nodeID string, side messages.Side, price float64, amount int) (messages.NodePlaceOrderResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodePlaceOrder{Side: side, Price: price, Amount: amount})
	if err != nil {
		return messages.NodePlaceOrderResult{}, err
	}
	return typed[messages.NodePlaceOrderResult](res)
}

func (r *Runtime) CancelOrder(ctx context.Context, nodeID, orderID string) (messages.NodeCancelOrderResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeCancelOrder{OrderID: orderID})
	if err != nil {
		return messages.NodeCancelOrderResult{}, err
	}
	return typed[messages.NodeCancelOrderResult](res)
}

func (r *Runtime) Invest(ctx context.Context, nodeID, pointID string, amount int) (messages.NodeInvestResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeInvest{PointID: pointID, Amount: amount})
	if err != nil {
		return messages.NodeInvestResult{}, err
	}
	return typed[messages.NodeInvestResult](res)
}

func (r *Runtime) UpgradeLink(ctx context.Context, nodeID, linkID string) (messages.NodeUpgradeLinkResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeUpgradeLink{LinkID: linkID})
	if err != nil {
		return messages.NodeUpgradeLinkResult{}, err
	}
	return typed[messages.NodeUpgradeLinkResult](res)
}

// State 读取节点公开状态（只读查询面）。
func (r *Runtime) State(ctx context.Context, nodeID string) (messages.NodeStateResult, error) {
	res, err := r.askNode(ctx, nodeID, messages.NodeStateQuery{})
	if err != nil {
		return messages.NodeStateResult{}, err
	}
	return typed[messages.NodeStateResult](res)
}

// PointState / MarketState 同属只读查询面，共用节点 runtime 的寻址配置。
func (r *Runtime) PointState(ctx context.Context, pointID string) (messages.PointStateResult, error) {
	if pointID == "" {
		return messages.PointStateResult{}, &RuntimeError{Code: transport.InvalidParam, Message: "point id 不能为空"}
	}
	res, err := r.ask(ctx, r.reg.PointManager, &messages.PointEnvelope{PointID: pointID, Msg: messages.PointStateQuery{}})
	if err != nil {
		return messages.PointStateResult{}, err
	}
	return typed[messages.PointStateResult](res)
}

func (r *Runtime) MarketState(ctx context.Context, withHistory bool) (messages.MarketStateResult, error) {
	res, err := r.ask(ctx, r.reg.Market, messages.MarketStateQuery{WithHistory: withHistory})
	if err != nil {
		return messages.MarketStateResult{}, err
	}
	return typed[messages.MarketStateResult](res)
}

func typed[T any](res any) (T, error) {
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, &RuntimeError{Code: transport.SystemError, Message: "actor 返回类型非法"}
	}
	return v, nil
}

func CodeFromError(err error) int {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	return transport.SystemError
}
