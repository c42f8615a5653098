package actors

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/asynkron/protoactor-go/actor"

	"Foam/internal/point/app/port"
	actorref "Foam/internal/shared/actor"
	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

// ManagerActor 除了按 id 路由，还承担交点发现：
// 拿新链路逐一对候选链路做线段求交，命中就创建交点子 actor。
// 发现范围有意只覆盖新链路两端已知的链路，不做全局扫描。
type ManagerActor struct {
	repo        port.PointRepository
	reg         *actorref.Registry
	pointActors map[string]*actor.PID
}

func NewManagerActor(repo port.PointRepository, reg *actorref.Registry) *ManagerActor {
	return &ManagerActor{
		repo:        repo,
		reg:         reg,
		pointActors: make(map[string]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *messages.PointEnvelope:
		if msg == nil || msg.PointID == "" {
			ctx.Respond(messages.FailResult(messages.CodeValidation, "empty point id"))
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, msg.PointID))
	case messages.DiscoverCrossings:
		m.handleDiscover(ctx, msg)
	default:
		return
	}
}

// handleDiscover 逐个候选链路异步取几何，命中求交就创建交点。
// 每个候选独立 reenter，单个候选不可达只丢掉那一个候选。
func (m *ManagerActor) handleDiscover(ctx actor.Context, msg messages.DiscoverCrossings) {
	newLink := msg.Link
	seen := make(map[string]struct{}, len(msg.CandidateLinkIDs))
	for _, candID := range msg.CandidateLinkIDs {
		if candID == "" || candID == newLink.ID {
			continue
		}
		if _, dup := seen[candID]; dup {
			continue
		}
		seen[candID] = struct{}{}

		candID := candID
		f := ctx.RequestFuture(m.reg.LinkManager, &messages.LinkEnvelope{
			LinkID: candID,
			Msg:    messages.LinkStateQuery{},
		}, m.askTimeout())

		ctx.ReenterAfter(f, func(res interface{}, err error) {
			ls, ok := res.(messages.LinkStateResult)
			if err != nil || !ok || !ls.OK {
				ctx.Logger().Warn("crossing candidate unavailable",
					"link_id", newLink.ID, "candidate", candID, "err", err)
				return
			}
			m.tryCrossing(ctx, newLink, ls.Link)
		})
	}
}

func (m *ManagerActor) tryCrossing(ctx actor.Context, a, b messages.LinkView) {
	pos, hit := geo.SegmentIntersection(a.PathA, a.PathB, b.PathA, b.PathB)
	if !hit {
		return
	}

	id := pointID(a.ID, b.ID)
	participants := dedup([]string{a.NodeA, a.NodeB, b.NodeA, b.NodeB})

	ctx.Logger().Info("contested point discovered",
		"point_id", id, "link_a", a.ID, "link_b", b.ID, "lat", pos.Lat, "lng", pos.Lng)

	ctx.Send(m.getOrSpawn(ctx, id), &messages.PointEnvelope{
		PointID: id,
		Msg: messages.CreatePoint{
			ID:           id,
			Position:     pos,
			LinkIDs:      []string{a.ID, b.ID},
			Participants: participants,
		},
	})
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, pointID string) *actor.PID {
	if pid, ok := m.pointActors[pointID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewPointActor(pointID, m.repo, m.reg)
	})
	pid := ctx.Spawn(props)
	m.pointActors[pointID] = pid
	return pid
}

func (m *ManagerActor) askTimeout() time.Duration {
	return time.Duration(m.reg.Game.EntityAskTimeoutMS) * time.Millisecond
}

// pointID 由两条链路 id 派生：同一对链路重复发现得到同一交点。
func pointID(linkA, linkB string) string {
	if linkA > linkB {
		linkA, linkB = linkB, linkA
	}
	h := fnv.New64a()
	h.Write([]byte(linkA))
	h.Write([]byte{'|'})
	h.Write([]byte(linkB))
	return fmt.Sprintf("pt-%016x", h.Sum64())
}

func dedup(ids []string) []string {
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		if id == "" || (i > 0 && id == ids[i-1]) {
			continue
		}
		out = append(out, id)
	}
	return out
}
