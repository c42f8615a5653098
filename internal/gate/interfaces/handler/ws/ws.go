package ws

import (
	"Foam/internal/gate/interfaces/handler"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/security"
	"Foam/internal/shared/transport"
	"Foam/internal/shared/transport/ws"
	"context"
)

type WsHandler struct {
	gate *handler.Gate
}

func NewWsHandler(g *handler.Gate) *WsHandler {
	return &WsHandler{gate: g}
}

func (h *WsHandler) RegisterRoutes(r *ws.Router) {
	r.Handle("auth", h.Auth)
	r.Handle("request_link", h.RequestLink)
	r.Handle("accept_link", h.AcceptLink)
	r.Handle("reject_link", h.RejectLink)
	r.Handle("place_order", h.PlaceOrder)
	r.Handle("cancel_order", h.CancelOrder)
	r.Handle("invest", h.Invest)
	r.Handle("upgrade_link", h.UpgradeLink)
	r.Handle("state", h.State)
}

// Auth 是连接上唯一的免登录消息：建档 → 实体上线 → 发 JWT → 绑定会话。
// 成功后先回 connected，再补推一条完整 state。
func (h *WsHandler) Auth(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	if !validInput(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return
	}
	username := wsReq.Body.Username
	if username == "" {
		h.fail(wsResp, transport.InvalidParam, "username 不能为空")
		return
	}

	if _, err := h.gate.Accounts.EnsureAccount(ctx, username, wsReq.Conn.Addr()); err != nil {
		h.error(ctx, wsResp, err)
		return
	}

	res, err := h.gate.Runtime.Authenticate(ctx, username)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}

	token, err := security.Award(username)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}

	wsReq.Conn.SetProperty(ws.ConnKeyUsername, username)
	h.gate.Session.Bind(username, token, wsReq.Conn)

	wsReq.Conn.Push("state", map[string]any{"node": res.Node})
	h.ok(wsResp, "connected", map[string]any{"username": username, "token": token})
}

func (h *WsHandler) RequestLink(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.RequestLink(ctx, username, wsReq.Body.To)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "link_requested", map[string]any{"linkId": res.LinkID, "to": wsReq.Body.To})
}

func (h *WsHandler) AcceptLink(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	h.respondLink(ctx, wsReq, wsResp, true)
}

func (h *WsHandler) RejectLink(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	h.respondLink(ctx, wsReq, wsResp, false)
}

func (h *WsHandler) respondLink(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp, accept bool) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.RespondLink(ctx, username, wsReq.Body.LinkID, accept)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	if accept {
		h.ok(wsResp, "link_accepted", map[string]any{"linkId": wsReq.Body.LinkID, "link": res.Link})
		return
	}
	h.ok(wsResp, "link_rejected", map[string]any{"linkId": wsReq.Body.LinkID})
}

func (h *WsHandler) PlaceOrder(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.PlaceOrder(ctx, username, messages.Side(wsReq.Body.Side), wsReq.Body.Price, wsReq.Body.Amount)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "order_placed", map[string]any{"order": res.Order, "fills": res.Fills})
}

func (h *WsHandler) CancelOrder(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.CancelOrder(ctx, username, wsReq.Body.OrderID)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "order_canceled", map[string]any{"orderId": wsReq.Body.OrderID, "amount": res.Refunded})
}

func (h *WsHandler) Invest(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.Invest(ctx, username, wsReq.Body.PointID, wsReq.Body.Amount)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "point_update", map[string]any{"point": res.Point})
}

func (h *WsHandler) UpgradeLink(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.UpgradeLink(ctx, username, wsReq.Body.LinkID)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "link_upgraded", map[string]any{"linkId": wsReq.Body.LinkID, "capacity": res.Capacity})
}

func (h *WsHandler) State(ctx context.Context, wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) {
	username, ok := h.authed(wsReq, wsResp)
	if !ok {
		return
	}

	res, err := h.gate.Runtime.State(ctx, username)
	if err != nil {
		h.error(ctx, wsResp, err)
		return
	}
	if !res.OK {
		h.reject(ctx, wsResp, res.Result)
		return
	}
	h.ok(wsResp, "state", map[string]any{"node": res.Node})
}

// ============ Shared Logic ============

func validInput(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) bool {
	return wsReq != nil && wsReq.Body != nil && wsReq.Conn != nil && wsResp != nil && wsResp.Body != nil
}

// authed 取连接绑定的用户名；未 auth 的连接只允许 auth 消息。
func (h *WsHandler) authed(wsReq *ws.WsMsgReq, wsResp *ws.WsMsgResp) (string, bool) {
	if !validInput(wsReq, wsResp) {
		h.fail(wsResp, transport.InvalidParam, "参数有误")
		return "", false
	}
	username, _ := wsReq.Conn.GetProperty(ws.ConnKeyUsername).(string)
	if username == "" {
		h.fail(wsResp, transport.Unauthorized, "请先发送 auth 消息")
		return "", false
	}
	return username, true
}

func (h *WsHandler) ok(resp *ws.WsMsgResp, kind string, data any) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = transport.OK
	resp.Body.Kind = kind
	resp.Body.Msg = data
}

func (h *WsHandler) fail(resp *ws.WsMsgResp, code int, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}
	resp.Body.Code = code
	resp.Body.ErrMsg = msg
}

func (h *WsHandler) reject(ctx context.Context, resp *ws.WsMsgResp, r messages.Result) {
	code, msg := h.gate.HandleBizReject(ctx, r)
	h.fail(resp, code, msg)
}

func (h *WsHandler) error(ctx context.Context, resp *ws.WsMsgResp, err error) {
	code, msg := h.gate.HandleError(ctx, err)
	h.fail(resp, code, msg)
}
