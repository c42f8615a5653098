package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/link/app/port"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
)

type ManagerActor struct {
	repo       port.LinkRepository
	reg        *actorref.Registry
	linkActors map[string]*actor.PID
}

func NewManagerActor(repo port.LinkRepository, reg *actorref.Registry) *ManagerActor {
	return &ManagerActor{
		repo:       repo,
		reg:        reg,
		linkActors: make(map[string]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	env, ok := ctx.Message().(*messages.LinkEnvelope)
	if !ok {
		return
	}
	if env == nil || env.LinkID == "" {
		ctx.Respond(messages.FailResult(messages.CodeValidation, "empty link id"))
		return
	}

	ctx.Forward(m.getOrSpawn(ctx, env.LinkID))
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, linkID string) *actor.PID {
	if pid, ok := m.linkActors[linkID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewLinkActor(linkID, m.repo, m.reg)
	})
	pid := ctx.Spawn(props)
	m.linkActors[linkID] = pid
	return pid
}
