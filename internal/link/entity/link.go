package entity

import (
	"fmt"
	"time"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

// LinkID 由两端节点名与创建时间派生，对同一对节点的多次（先拒后建）
// 握手保持唯一。
func LinkID(a, b string, at time.Time) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("lk-%s-%s-%d", a, b, at.UnixNano()/1e6)
}

// Link 是两个节点间的资源通道，生命周期 pending → active → inactive。
type Link struct {
	id        string
	nodeA     string
	nodeB     string
	pathA     geo.LatLng
	pathB     geo.LatLng
	capacity  int
	status    messages.LinkStatus
	createdAt time.Time

	pointIDs []string // 落在本链路上的争夺点，流量 tick 逐一通知
	dirty    bool
}

func NewLink(id, nodeA, nodeB string, pathA, pathB geo.LatLng, capacity int, now time.Time) *Link {
	return &Link{
		id:        id,
		nodeA:     nodeA,
		nodeB:     nodeB,
		pathA:     pathA,
		pathB:     pathB,
		capacity:  capacity,
		status:    messages.LinkPending,
		createdAt: now,
		dirty:     true,
	}
}

func (l *Link) ID() string                  { return l.id }
func (l *Link) NodeA() string               { return l.nodeA }
func (l *Link) NodeB() string               { return l.nodeB }
func (l *Link) Endpoints() (string, string) { return l.nodeA, l.nodeB }
func (l *Link) PathA() geo.LatLng           { return l.pathA }
func (l *Link) PathB() geo.LatLng           { return l.pathB }
func (l *Link) Capacity() int               { return l.capacity }
func (l *Link) Status() messages.LinkStatus { return l.status }

// Other 返回给定端点的对端；给定节点不在链路上时返回空串。
func (l *Link) Other(nodeID string) string {
	switch nodeID {
	case l.nodeA:
		return l.nodeB
	case l.nodeB:
		return l.nodeA
	}
	return ""
}

// Activate 仅对 pending 链路生效，重复激活是 no-op。
func (l *Link) Activate() bool {
	if l.status != messages.LinkPending {
		return false
	}
	l.status = messages.LinkActive
	l.dirty = true
	return true
}

// Deactivate 把链路打为 inactive（握手被拒或端点下线）。
func (l *Link) Deactivate() bool {
	if l.status == messages.LinkInactive {
		return false
	}
	l.status = messages.LinkInactive
	l.dirty = true
	return true
}

// Upgrade 提升容量，只有 active 链路可升级。
func (l *Link) Upgrade(step int) (int, bool) {
	if l.status != messages.LinkActive || step <= 0 {
		return l.capacity, false
	}
	l.capacity += step
	l.dirty = true
	return l.capacity, true
}

// Flow 是当前 tick 认定的流量：active 链路即满容量，其余为 0。
func (l *Link) Flow() int {
	if l.status != messages.LinkActive {
		return 0
	}
	return l.capacity
}

func (l *Link) RegisterPoint(pointID string) {
	for _, id := range l.pointIDs {
		if id == pointID {
			return
		}
	}
	l.pointIDs = append(l.pointIDs, pointID)
	l.dirty = true
}

func (l *Link) PointIDs() []string { return append([]string(nil), l.pointIDs...) }

func (l *Link) Dirty() bool { return l.dirty }
func (l *Link) ClearDirty() { l.dirty = false }

func (l *Link) View() messages.LinkView {
	return messages.LinkView{
		ID:        l.id,
		NodeA:     l.nodeA,
		NodeB:     l.nodeB,
		PathA:     l.pathA,
		PathB:     l.pathB,
		Capacity:  l.capacity,
		Status:    l.status,
		CreatedAt: l.createdAt.UnixNano() / 1e6,
	}
}
