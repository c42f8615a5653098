// Package actorref 持有各实体 manager 的 PID，供实体间点对点调用寻址。
// PID 在进程装配阶段填好，之后只读。
package actorref

import (
	protoactor "github.com/asynkron/protoactor-go/actor"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/serverconfig"
)

type Registry struct {
	System *protoactor.ActorSystem

	NodeManager  *protoactor.PID
	LinkManager  *protoactor.PID
	PointManager *protoactor.PID
	Market       *protoactor.PID

	Pusher messages.Pusher
	Game   *serverconfig.GameConfig
}

func NewRegistry(system *protoactor.ActorSystem, game *serverconfig.GameConfig) *Registry {
	return &Registry{
		System: system,
		Pusher: messages.NopPusher{},
		Game:   game,
	}
}

// Push 空实现兜底，离线节点由网关静默丢弃。
func (r *Registry) Push(nodeID, kind string, payload any) {
	if r == nil || r.Pusher == nil {
		return
	}
	r.Pusher.Push(nodeID, kind, payload)
}
