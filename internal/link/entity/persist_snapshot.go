package entity

import (
	"time"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

// LinkState 是持久化用的全量快照。
type LinkState struct {
	ID        string
	NodeA     string
	NodeB     string
	PathA     geo.LatLng
	PathB     geo.LatLng
	Capacity  int
	Status    string
	CreatedAt time.Time
	PointIDs  []string
}

func (l *Link) Snapshot() LinkState {
	return LinkState{
		ID:        l.id,
		NodeA:     l.nodeA,
		NodeB:     l.nodeB,
		PathA:     l.pathA,
		PathB:     l.pathB,
		Capacity:  l.capacity,
		Status:    string(l.status),
		CreatedAt: l.createdAt,
		PointIDs:  append([]string(nil), l.pointIDs...),
	}
}

func Hydrate(s LinkState) *Link {
	status := messages.LinkStatus(s.Status)
	switch status {
	case messages.LinkPending, messages.LinkActive, messages.LinkInactive:
	default:
		status = messages.LinkInactive
	}
	return &Link{
		id:        s.ID,
		nodeA:     s.NodeA,
		nodeB:     s.NodeB,
		pathA:     s.PathA,
		pathB:     s.PathB,
		capacity:  s.Capacity,
		status:    status,
		createdAt: s.CreatedAt,
		pointIDs:  append([]string(nil), s.PointIDs...),
	}
}
