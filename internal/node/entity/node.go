package entity

import (
	"math"
	"time"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

// 各类动作的固定 heat 增量；生产 tick 每次衰减 1。
const (
	HeatLinkRequested   = 5
	HeatLinkEstablished = 5
	HeatOrderPlaced     = 2
	HeatOrderFilled     = 3
	HeatInvested        = 10
	HeatControlGained   = 15
	HeatLinkUpgraded    = 5

	HeatMax = 100
)

// PendingLink 是一条待处理的连接请求（两侧各自记一份）。
type PendingLink struct {
	LinkID    string
	Peer      string
	PeerPos   geo.LatLng
	CreatedAt time.Time
}

// Node 是玩家实体的内存状态。只允许本实体的 actor 修改（单写者）。
type Node struct {
	username       string
	balance        int
	productionRate float64
	prodCarry      float64 // 生产量小数部分的累计，满 1 才入账
	heat           int
	position       geo.LatLng
	city           string
	region         string
	country        string
	createdAt      time.Time

	linkIDs    []string
	stakes     map[string]int
	controlled map[string]struct{}

	// pendingIn：等待本节点响应的请求；pendingOut：本节点发出、等待对端响应的请求。
	pendingIn  map[string]PendingLink
	pendingOut map[string]PendingLink

	dirty bool
}

// NewNode 创建首次认证的节点。
func NewNode(username string, startingBalance int, productionRate float64, pos geo.LatLng) *Node {
	return &Node{
		username:       username,
		balance:        startingBalance,
		productionRate: productionRate,
		position:       pos,
		createdAt:      time.Now(),
		stakes:         make(map[string]int),
		controlled:     make(map[string]struct{}),
		pendingIn:      make(map[string]PendingLink),
		pendingOut:     make(map[string]PendingLink),
		dirty:          true,
	}
}

func (n *Node) Username() string      { return n.username }
func (n *Node) Balance() int          { return n.balance }
func (n *Node) Heat() int             { return n.heat }
func (n *Node) Position() geo.LatLng  { return n.position }
func (n *Node) CreatedAt() time.Time  { return n.createdAt }
func (n *Node) ControlledCount() int  { return len(n.controlled) }
func (n *Node) ProductionRate() float64 { return n.productionRate }

func (n *Node) LinkIDs() []string {
	out := make([]string, len(n.linkIDs))
	copy(out, n.linkIDs)
	return out
}

// Credit 入账，Delta 可为负（扣款时也钳到 0，保证余额不变量）。
func (n *Node) Credit(delta int) int {
	n.balance += delta
	if n.balance < 0 {
		n.balance = 0
	}
	n.dirty = true
	return n.balance
}

// Debit 校验余额充足后扣款；不足时不改状态、返回 false。
func (n *Node) Debit(amount int) bool {
	if amount <= 0 || n.balance < amount {
		return false
	}
	n.balance -= amount
	n.dirty = true
	return true
}

// AdjustHeat 调整可见度热度，钳在 [0, 100]。
func (n *Node) AdjustHeat(delta int) int {
	n.heat += delta
	if n.heat < 0 {
		n.heat = 0
	}
	if n.heat > HeatMax {
		n.heat = HeatMax
	}
	n.dirty = true
	return n.heat
}

// ProduceTick 执行一次生产：基础产率 + 0.5 × 控制交点数；小数部分跨 tick 累计。
// 同时热度衰减 1。返回本次入账量。
func (n *Node) ProduceTick() int {
	gross := n.productionRate + 0.5*float64(len(n.controlled)) + n.prodCarry
	credit := int(math.Floor(gross))
	n.prodCarry = gross - float64(credit)
	if credit > 0 {
		n.balance += credit
	}
	n.AdjustHeat(-1)
	return credit
}

func (n *Node) HasLink(linkID string) bool {
	for _, id := range n.linkIDs {
		if id == linkID {
			return true
		}
	}
	return false
}

func (n *Node) AddLink(linkID string) {
	if n.HasLink(linkID) {
		return
	}
	n.linkIDs = append(n.linkIDs, linkID)
	n.dirty = true
}

func (n *Node) AddPendingIn(p PendingLink)  { n.pendingIn[p.LinkID] = p; n.dirty = true }
func (n *Node) AddPendingOut(p PendingLink) { n.pendingOut[p.LinkID] = p; n.dirty = true }

// TakePendingIn 取出并删除一条待响应请求；不存在返回 false（StaleState）。
func (n *Node) TakePendingIn(linkID string) (PendingLink, bool) {
	p, ok := n.pendingIn[linkID]
	if ok {
		delete(n.pendingIn, linkID)
		n.dirty = true
	}
	return p, ok
}

// DropPendingOut 在对端明确拒绝时清掉请求方的记录。
func (n *Node) DropPendingOut(linkID string) bool {
	if _, ok := n.pendingOut[linkID]; !ok {
		return false
	}
	delete(n.pendingOut, linkID)
	n.dirty = true
	return true
}

// ConfirmPendingOut 在对端接受后把请求方的 pending 转成正式连接。
func (n *Node) ConfirmPendingOut(linkID string) {
	if _, ok := n.pendingOut[linkID]; ok {
		delete(n.pendingOut, linkID)
	}
	n.AddLink(linkID)
}

// ExpirePending 清理超过 TTL 的双侧 pending，返回被清理的条目。
// 被遗弃的请求不再无限泄漏（对应生产 tick 的定期清扫）。
func (n *Node) ExpirePending(ttl time.Duration, now time.Time) []PendingLink {
	var expired []PendingLink
	for id, p := range n.pendingIn {
		if now.Sub(p.CreatedAt) >= ttl {
			expired = append(expired, p)
			delete(n.pendingIn, id)
			n.dirty = true
		}
	}
	for id, p := range n.pendingOut {
		if now.Sub(p.CreatedAt) >= ttl {
			expired = append(expired, p)
			delete(n.pendingOut, id)
			n.dirty = true
		}
	}
	return expired
}

// RecordStake 记录本节点在某交点的累计投入（本地视图，真实池在交点实体）。
func (n *Node) RecordStake(pointID string, amount int) {
	n.stakes[pointID] += amount
	n.dirty = true
}

// SetControlled 维护本节点控制的交点集合。
func (n *Node) SetControlled(pointID string, isController bool) {
	if isController {
		n.controlled[pointID] = struct{}{}
	} else {
		delete(n.controlled, pointID)
	}
	n.dirty = true
}

func (n *Node) Dirty() bool      { return n.dirty }
func (n *Node) ClearDirty()      { n.dirty = false }

// View 导出对外快照。
func (n *Node) View() messages.NodeView {
	stakes := make(map[string]int, len(n.stakes))
	for k, v := range n.stakes {
		stakes[k] = v
	}
	controlled := make([]string, 0, len(n.controlled))
	for id := range n.controlled {
		controlled = append(controlled, id)
	}
	pend := make(map[string]string, len(n.pendingIn))
	for id, p := range n.pendingIn {
		pend[id] = p.Peer
	}
	return messages.NodeView{
		Username:       n.username,
		Nits:           n.balance,
		ProductionRate: n.productionRate,
		Heat:           n.heat,
		Coordinates:    n.position,
		City:           n.city,
		Region:         n.region,
		Country:        n.country,
		CreatedAt:      n.createdAt.UnixNano() / 1e6,
		Links:          n.LinkIDs(),
		Stakes:         stakes,
		Controlled:     controlled,
		PendingLinks:   pend,
	}
}
