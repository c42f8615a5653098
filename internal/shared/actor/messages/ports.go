package messages

// Pusher 把实体通知推给节点的在线会话（网关实现，离线节点静默丢弃）。
type Pusher interface {
	Push(nodeID string, kind string, payload any)
}

// NopPusher 供测试与无网关场景使用。
type NopPusher struct{}

func (NopPusher) Push(string, string, any) {}
