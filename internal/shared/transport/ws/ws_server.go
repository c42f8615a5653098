package ws

import (
	"Foam/modules/kit/logx"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type pushMsg struct {
	kind    string
	payload any
}

type WsServer struct {
	conn     *websocket.Conn
	router   *Router
	outChan  chan *pushMsg
	property map[string]any
	sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, l logx.Logger) *WsServer {
	return &WsServer{
		conn:     wsConn,
		outChan:  make(chan *pushMsg, 1000),
		property: make(map[string]any),
		done:     make(chan struct{}),
		log:      l,
	}
}

func (s *WsServer) Router(router *Router) {
	s.router = router
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

func (s *WsServer) Push(kind string, data any) {
	select {
	case s.outChan <- &pushMsg{kind: kind, payload: data}:
	case <-s.done:
	}
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			e := fmt.Sprintf("%v", err)
			s.log.Error("ws readMsgLoop error", zap.String("err", e))
		}
		s.Close()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Info("ws_server read msg end", zap.Error(err))
			return
		}

		body := ClientMsg{}
		if err := json.Unmarshal(data, &body); err != nil {
			s.log.Error("ws_server readMsgLoop unmarshal json error", zap.Error(err))
			continue
		}

		s.log.Info("ws_server read msg", zap.Any("data", body))

		req := WsMsgReq{Body: &body, Conn: s}
		resp := WsMsgResp{Body: &RespBody{Kind: body.Type}}
		s.router.Dispatch(&req, &resp)

		// 业务失败只下发 error 事件；成功事件由 handler 指定 Kind（可为空，表示结果走实体推送）。
		if resp.Body.Code != 0 {
			s.Push(ErrorMsg, map[string]any{"code": resp.Body.Code, "message": resp.Body.ErrMsg})
			continue
		}
		if resp.Body.Kind != "" {
			s.Push(resp.Body.Kind, resp.Body.Msg)
		}
	}
}

func (s *WsServer) writeMsgLoop() {
	for {
		select {
		case msg, ok := <-s.outChan:
			if ok {
				s.write(msg)
			}
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}

// write 把事件种类和负载合并为单层 JSON 对象后下发，type 字段恒为事件种类。
func (s *WsServer) write(msg *pushMsg) {
	body := map[string]any{}
	if msg.payload != nil {
		raw, err := json.Marshal(msg.payload)
		if err != nil {
			s.log.Error("ws_server write marshal payload error", zap.Error(err))
			return
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			s.log.Error("ws_server write flatten payload error", zap.Error(err))
			return
		}
	}
	body["type"] = msg.kind

	data, err := json.Marshal(body)
	if err != nil {
		s.log.Error("ws_server write marshal json error", zap.Error(err))
		return
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Error("ws_server write error", zap.Error(err))
	}
}
