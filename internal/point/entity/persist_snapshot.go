package entity

import (
	"time"

	"Foam/internal/shared/geo"
)

// PointState 是持久化用的全量快照。StakeOrder 必须随 stake 一起落盘，
// 否则重启后平票裁决会丢失入池顺序。
type PointState struct {
	ID           string
	Position     geo.LatLng
	LinkIDs      []string
	Participants []string
	Stakes       map[string]int
	StakeOrder   []string
	Controller   string
	TotalStake   int
	LastActivity time.Time
	CreatedAt    time.Time
}

func (p *Point) Snapshot() PointState {
	s := PointState{
		ID:           p.id,
		Position:     p.position,
		LinkIDs:      append([]string(nil), p.linkIDs...),
		Participants: append([]string(nil), p.participants...),
		Stakes:       make(map[string]int, len(p.stakes)),
		StakeOrder:   append([]string(nil), p.stakeOrder...),
		Controller:   p.controller,
		TotalStake:   p.totalStake,
		LastActivity: p.lastActivity,
		CreatedAt:    p.createdAt,
	}
	for k, v := range p.stakes {
		s.Stakes[k] = v
	}
	return s
}

// Hydrate 从快照重建实体，重算派生字段兜底历史脏数据。
func Hydrate(s PointState) *Point {
	p := &Point{
		id:           s.ID,
		position:     s.Position,
		linkIDs:      append([]string(nil), s.LinkIDs...),
		participants: append([]string(nil), s.Participants...),
		stakes:       make(map[string]int, len(s.Stakes)),
		stakeOrder:   append([]string(nil), s.StakeOrder...),
		lastActivity: s.LastActivity,
		createdAt:    s.CreatedAt,
	}
	total := 0
	for k, v := range s.Stakes {
		p.stakes[k] = v
		total += v
	}
	p.totalStake = total
	p.recomputeController()
	return p
}
