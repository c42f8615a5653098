package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/node/app/port"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
)

// ManagerActor 按用户名路由到节点子 actor，只做查表和转发，不干重活。
type ManagerActor struct {
	repo       port.NodeRepository
	reg        *actorref.Registry
	nodeActors map[string]*actor.PID // username -> pid
}

func NewManagerActor(repo port.NodeRepository, reg *actorref.Registry) *ManagerActor {
	return &ManagerActor{
		repo:       repo,
		reg:        reg,
		nodeActors: make(map[string]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	env, ok := ctx.Message().(*messages.NodeEnvelope)
	if !ok {
		return
	}
	if env == nil || env.NodeID == "" {
		ctx.Respond(messages.FailResult(messages.CodeValidation, "empty node id"))
		return
	}

	ctx.Forward(m.getOrSpawn(ctx, env.NodeID))
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, nodeID string) *actor.PID {
	if pid, ok := m.nodeActors[nodeID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewNodeActor(nodeID, m.repo, m.reg)
	})
	pid := ctx.Spawn(props)
	m.nodeActors[nodeID] = pid
	return pid
}
