package ws

// foam 线协议是扁平 JSON：客户端上行/服务端下行都是单层对象，按 type 字段分发。

type ClientMsg struct {
	Type     string  `json:"type"`
	Username string  `json:"username,omitempty"`
	To       string  `json:"to,omitempty"`
	LinkID   string  `json:"linkId,omitempty"`
	PointID  string  `json:"pointId,omitempty"`
	Side     string  `json:"side,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Amount   int     `json:"amount,omitempty"`
	OrderID  string  `json:"orderId,omitempty"`
}

type RespBody struct {
	Kind   string
	Code   int
	ErrMsg string
	Msg    any
}

type WsMsgReq struct {
	Body *ClientMsg
	Conn WSConn
}

type WsMsgResp struct {
	Body *RespBody
}

type WSConn interface {
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Addr() string
	Push(kind string, data any)
	Close()
	// Done 用于感知连接生命周期结束（连接关闭时该 channel 会被关闭）
	Done() <-chan struct{}
}

const (
	ConnKeyUsername = "username"
	ErrorMsg        = "error"
)
