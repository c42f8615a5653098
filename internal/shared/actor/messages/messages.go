// Package messages 定义实体 actor 之间的全部消息契约。
//
// 约定：
//   - 带 *Result 返回的消息通过 RequestFuture 同步请求（挂起点）
//   - Notify*/Credit*/Adjust* 类通知通过 Send 单向投递：失败只记日志、
//     不重试、不回滚（跨实体最终一致，见各实体 actor）
package messages

import "Foam/internal/shared/geo"

// Result 是实体响应的统一业务结果段（参考网关 BizResult）。
type Result struct {
	OK     bool   `json:"ok"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func OKResult() Result {
	return Result{OK: true}
}

func FailResult(code, reason string) Result {
	return Result{OK: false, Code: code, Reason: reason}
}

// ---- 管理器信封：manager 按 ID 找到/创建子 actor 再转发 ----

type NodeEnvelope struct {
	NodeID string
	Msg    any
}

type LinkEnvelope struct {
	LinkID string
	Msg    any
}

type PointEnvelope struct {
	PointID string
	Msg     any
}

// ---- Node 命令（来自网关） ----

type AuthenticateNode struct {
	Name string
}

type AuthenticateResult struct {
	Result
	Node  NodeView
	Token string
}

type NodeRequestLink struct {
	To string
}

type NodeRequestLinkResult struct {
	Result
	LinkID string
}

type NodeRespondLink struct {
	LinkID string
	Accept bool
}

type NodeRespondLinkResult struct {
	Result
	Link *LinkView
}

type NodePlaceOrder struct {
	Side   Side
	Price  float64
	Amount int
}

type NodePlaceOrderResult struct {
	Result
	Order OrderView
	Fills []Fill
}

type NodeCancelOrder struct {
	OrderID string
}

type NodeCancelOrderResult struct {
	Result
	Refunded int
}

type NodeInvest struct {
	PointID string
	Amount  int
}

type NodeInvestResult struct {
	Result
	Point *PointView
}

type NodeUpgradeLink struct {
	LinkID string
}

type NodeUpgradeLinkResult struct {
	Result
	Capacity int
}

type NodeStateQuery struct{}

type NodeStateResult struct {
	Result
	Node NodeView
}

// ---- Node 回调（来自其他实体） ----

// NotifyLinkRequest 在目标节点侧登记待处理的连接请求（同步，失败即 TargetUnavailable）。
type NotifyLinkRequest struct {
	LinkID  string
	From    string
	FromPos geo.LatLng
}

type NotifyLinkRequestResult struct {
	Result
}

// PublicStateQuery 读取节点公开状态（位置 + 已有连接），供握手与交点发现使用。
type PublicStateQuery struct{}

type PublicStateResult struct {
	Result
	Position geo.LatLng
	LinkIDs  []string
}

// NotifyLinkEstablished 单向告知请求方连接已建立；请求方本地 pending
// 转正。请求方建立前的连接列表已在 PublicStateQuery 里拿到。
type NotifyLinkEstablished struct {
	Link LinkView
}

type NotifyLinkRejected struct {
	LinkID string
	By     string
}

type CreditBalance struct {
	Delta  int
	Reason string
}

type AdjustHeat struct {
	Delta int
}

type NotifyControlChanged struct {
	PointID      string
	IsController bool
	Attacker     string // 夺走控制权的一方（失去控制时带上）
}

type NotifyTollReceived struct {
	PointID string
	Amount  int
}

// NotifyFill 是撮合结果回调：Credit 为买方应得的资源入账（卖方为 0，
// 其资源在挂单时已托管）。
type NotifyFill struct {
	OrderID string
	Side    Side
	Price   float64
	Amount  int
	Credit  int
}

// NotifyPointDiscovered 告知节点成为新交点的参与方。
type NotifyPointDiscovered struct {
	Point PointView
}

// ---- Link ----

type CreateLink struct {
	Link LinkView
}

type CreateLinkResult struct {
	Result
}

type LinkStateQuery struct{}

type LinkStateResult struct {
	Result
	Link LinkView
}

type UpgradeCapacity struct {
	Step int
}

type UpgradeCapacityResult struct {
	Result
	Capacity int
}

// RegisterPoint 把交点挂到链路上，flow tick 会向已登记的交点供流。
type RegisterPoint struct {
	PointID string
}

// ---- Contested point ----

// DiscoverCrossings 由 point manager 处理：拿新链路与候选链路做几何求交，
// 为每个交点创建实体。
type DiscoverCrossings struct {
	Link             LinkView
	CandidateLinkIDs []string
}

type DiscoverCrossingsResult struct {
	Result
	Created []PointView
}

// CreatePoint 由 point manager 在几何求交命中后发给子 actor；
// 同 id 重复创建是幂等 no-op。
type CreatePoint struct {
	ID           string
	Position     geo.LatLng
	LinkIDs      []string
	Participants []string
}

type InvestStake struct {
	NodeID string
	Amount int
}

type InvestStakeResult struct {
	Result
	Point PointView
}

// CollectToll 是流量模拟的过路费钩子：无控制者或链路不在交点上时为 no-op。
type CollectToll struct {
	LinkID string
	Flow   int
}

type PointStateQuery struct{}

type PointStateResult struct {
	Result
	Point PointView
}

// ---- Market（全局单例） ----

type MarketPlaceOrder struct {
	NodeID string
	Side   Side
	Price  float64
	Amount int
}

type MarketPlaceOrderResult struct {
	Result
	Order OrderView
	Fills []Fill
}

type MarketCancelOrder struct {
	NodeID  string
	OrderID string
}

type MarketCancelOrderResult struct {
	Result
	Side   Side
	Refund int // ask 撤单返还的托管余量
}

type MarketStateQuery struct {
	WithHistory bool
}

type MarketStateResult struct {
	Result
	Market MarketView
}
