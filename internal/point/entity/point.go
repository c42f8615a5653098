package entity

import (
	"math"
	"time"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

// Point 是两条链路几何相交产生的争夺点。
//
// 不变量：
//   - controller 为空 当且仅当 stakes 为空
//   - 否则 controller 是严格最大 stake 的持有者，平票时最早入池者保持
//   - totalStake 恒等于 stakes 求和
type Point struct {
	id           string
	position     geo.LatLng
	linkIDs      []string
	participants []string // 交点创建时涉及的四个节点（零投入也要通知）

	stakes     map[string]int
	stakeOrder []string // 入池顺序，平票裁决用
	controller string
	totalStake int

	lastActivity time.Time
	createdAt    time.Time
	dirty        bool
}

func NewPoint(id string, pos geo.LatLng, linkIDs, participants []string, now time.Time) *Point {
	return &Point{
		id:           id,
		position:     pos,
		linkIDs:      append([]string(nil), linkIDs...),
		participants: append([]string(nil), participants...),
		stakes:       make(map[string]int),
		lastActivity: now,
		createdAt:    now,
		dirty:        true,
	}
}

func (p *Point) ID() string              { return p.id }
func (p *Point) Controller() string      { return p.controller }
func (p *Point) TotalStake() int         { return p.totalStake }
func (p *Point) Participants() []string  { return append([]string(nil), p.participants...) }
func (p *Point) LastActivity() time.Time { return p.lastActivity }

func (p *Point) Stake(nodeID string) int { return p.stakes[nodeID] }

func (p *Point) HasLink(linkID string) bool {
	for _, id := range p.linkIDs {
		if id == linkID {
			return true
		}
	}
	return false
}

// Invest 追加投入并重算控制权。返回投入前的控制者，调用方据此发控制变更通知。
func (p *Point) Invest(nodeID string, amount int, now time.Time) (prevController string) {
	prevController = p.controller

	if _, ok := p.stakes[nodeID]; !ok {
		p.stakeOrder = append(p.stakeOrder, nodeID)
	}
	p.stakes[nodeID] += amount
	p.totalStake += amount
	p.lastActivity = now
	p.recomputeController()
	p.dirty = true
	return prevController
}

// Decay 执行一次衰减检查：距最近活动不足 interval 则什么都不做。
// 触发时每份 stake 乘 (1-rate) 向下取整，归零的条目移除，
// 之后按与投资路径相同的规则重算控制权。返回是否真的衰减了。
func (p *Point) Decay(rate float64, interval time.Duration, now time.Time) (prevController string, decayed bool) {
	prevController = p.controller
	if now.Sub(p.lastActivity) < interval {
		return prevController, false
	}

	keep := p.stakeOrder[:0]
	total := 0
	for _, nodeID := range p.stakeOrder {
		nv := int(math.Floor(float64(p.stakes[nodeID]) * (1 - rate)))
		if nv <= 0 {
			delete(p.stakes, nodeID)
			continue
		}
		p.stakes[nodeID] = nv
		total += nv
		keep = append(keep, nodeID)
	}
	p.stakeOrder = keep
	p.totalStake = total
	p.recomputeController()
	p.dirty = true
	return prevController, true
}

// CollectToll 过路费钩子：无控制者或链路不在本交点上时为 no-op。
// 返回控制者与 floor(flow × rate)；金额为 0 时视为 no-op。
func (p *Point) CollectToll(linkID string, flow int, rate float64) (controller string, amount int, ok bool) {
	if p.controller == "" || !p.HasLink(linkID) {
		return "", 0, false
	}
	amount = int(math.Floor(float64(flow) * rate))
	if amount <= 0 {
		return "", 0, false
	}
	return p.controller, amount, true
}

// recomputeController：按入池顺序扫描严格最大值，平票时最早入池者保持。
func (p *Point) recomputeController() {
	best := ""
	bestStake := 0
	for _, nodeID := range p.stakeOrder {
		if v := p.stakes[nodeID]; v > bestStake {
			best = nodeID
			bestStake = v
		}
	}
	p.controller = best
}

func (p *Point) Dirty() bool { return p.dirty }
func (p *Point) ClearDirty() { p.dirty = false }

func (p *Point) View() messages.PointView {
	stakes := make(map[string]int, len(p.stakes))
	for k, v := range p.stakes {
		stakes[k] = v
	}
	return messages.PointView{
		ID:           p.id,
		Coordinates:  p.position,
		Links:        append([]string(nil), p.linkIDs...),
		Stakes:       stakes,
		Controller:   p.controller,
		TotalStake:   p.totalStake,
		LastActivity: p.lastActivity.UnixNano() / 1e6,
		CreatedAt:    p.createdAt.UnixNano() / 1e6,
	}
}
