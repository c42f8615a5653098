package entity

import (
	"time"

	"Foam/internal/shared/geo"
)

// NodeState 是持久化用的全量快照（与内存实体解耦，供 dc/repo 使用）。
type NodeState struct {
	Username       string
	Balance        int
	ProductionRate float64
	ProdCarry      float64
	Heat           int
	Position       geo.LatLng
	City           string
	Region         string
	Country        string
	CreatedAt      time.Time
	LinkIDs        []string
	Stakes         map[string]int
	Controlled     []string
	PendingIn      []PendingLink
	PendingOut     []PendingLink
}

func (n *Node) Snapshot() NodeState {
	s := NodeState{
		Username:       n.username,
		Balance:        n.balance,
		ProductionRate: n.productionRate,
		ProdCarry:      n.prodCarry,
		Heat:           n.heat,
		Position:       n.position,
		City:           n.city,
		Region:         n.region,
		Country:        n.country,
		CreatedAt:      n.createdAt,
		LinkIDs:        n.LinkIDs(),
		Stakes:         make(map[string]int, len(n.stakes)),
	}
	for k, v := range n.stakes {
		s.Stakes[k] = v
	}
	for id := range n.controlled {
		s.Controlled = append(s.Controlled, id)
	}
	for _, p := range n.pendingIn {
		s.PendingIn = append(s.PendingIn, p)
	}
	for _, p := range n.pendingOut {
		s.PendingOut = append(s.PendingOut, p)
	}
	return s
}

// Hydrate 从持久化快照重建实体（加载后不带脏标记）。
func Hydrate(s NodeState) *Node {
	n := &Node{
		username:       s.Username,
		balance:        s.Balance,
		productionRate: s.ProductionRate,
		prodCarry:      s.ProdCarry,
		heat:           s.Heat,
		position:       s.Position,
		city:           s.City,
		region:         s.Region,
		country:        s.Country,
		createdAt:      s.CreatedAt,
		linkIDs:        append([]string(nil), s.LinkIDs...),
		stakes:         make(map[string]int, len(s.Stakes)),
		controlled:     make(map[string]struct{}, len(s.Controlled)),
		pendingIn:      make(map[string]PendingLink, len(s.PendingIn)),
		pendingOut:     make(map[string]PendingLink, len(s.PendingOut)),
	}
	for k, v := range s.Stakes {
		n.stakes[k] = v
	}
	for _, id := range s.Controlled {
		n.controlled[id] = struct{}{}
	}
	for _, p := range s.PendingIn {
		n.pendingIn[p.LinkID] = p
	}
	for _, p := range s.PendingOut {
		n.pendingOut[p.LinkID] = p
	}
	// 余额/热度不变量在加载时兜底一次，防御历史脏数据。
	if n.balance < 0 {
		n.balance = 0
	}
	if n.heat < 0 {
		n.heat = 0
	}
	if n.heat > HeatMax {
		n.heat = HeatMax
	}
	return n
}
