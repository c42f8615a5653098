package ws

import (
	"Foam/internal/gate/interfaces/handler"
	"Foam/internal/shared/transport"
	"Foam/internal/shared/transport/ws"
	"context"
	"testing"
)

type fakeConn struct {
	props  map[string]any
	pushed []struct {
		kind string
		data any
	}
	done chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{props: map[string]any{}, done: make(chan struct{})}
}

func (c *fakeConn) SetProperty(key string, value any) { c.props[key] = value }
func (c *fakeConn) GetProperty(key string) any        { return c.props[key] }
func (c *fakeConn) RemoveProperty(key string)         { delete(c.props, key) }
func (c *fakeConn) Addr() string                      { return "test" }
func (c *fakeConn) Push(kind string, data any) {
	c.pushed = append(c.pushed, struct {
		kind string
		data any
	}{kind, data})
}
func (c *fakeConn) Close()                { close(c.done) }
func (c *fakeConn) Done() <-chan struct{} { return c.done }

func TestWsHandler_未认证连接拒绝业务消息(t *testing.T) {
	h := NewWsHandler(handler.NewGate(nil, nil, nil))

	req := &ws.WsMsgReq{Body: &ws.ClientMsg{Type: "request_link", To: "bob"}, Conn: newFakeConn()}
	resp := &ws.WsMsgResp{Body: &ws.RespBody{}}
	h.RequestLink(context.Background(), req, resp)

	if resp.Body.Code != transport.Unauthorized {
		t.Fatalf("期望 Unauthorized, got=%d", resp.Body.Code)
	}
}

func TestWsHandler_Auth缺用户名返回参数错误(t *testing.T) {
	h := NewWsHandler(handler.NewGate(nil, nil, nil))

	req := &ws.WsMsgReq{Body: &ws.ClientMsg{Type: "auth"}, Conn: newFakeConn()}
	resp := &ws.WsMsgResp{Body: &ws.RespBody{}}
	h.Auth(context.Background(), req, resp)

	if resp.Body.Code != transport.InvalidParam {
		t.Fatalf("期望 InvalidParam, got=%d", resp.Body.Code)
	}
}

func TestWsHandler_空请求体直接拒绝(t *testing.T) {
	h := NewWsHandler(handler.NewGate(nil, nil, nil))

	resp := &ws.WsMsgResp{Body: &ws.RespBody{}}
	h.PlaceOrder(context.Background(), nil, resp)

	if resp.Body.Code != transport.InvalidParam {
		t.Fatalf("期望 InvalidParam, got=%d", resp.Body.Code)
	}
}
