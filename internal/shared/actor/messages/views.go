package messages

import "Foam/internal/shared/geo"

// 视图结构是实体状态的只读快照，JSON 字段与 foam 客户端线协议保持一致。

type NodeView struct {
	Username       string            `json:"username"`
	Nits           int               `json:"nits"`
	ProductionRate float64           `json:"productionRate"`
	Heat           int               `json:"heat"`
	Coordinates    geo.LatLng        `json:"coordinates"`
	City           string            `json:"city,omitempty"`
	Region         string            `json:"region,omitempty"`
	Country        string            `json:"country,omitempty"`
	CreatedAt      int64             `json:"createdAt"`
	Links          []string          `json:"links"`
	Stakes         map[string]int    `json:"stakes,omitempty"`
	Controlled     []string          `json:"controlled,omitempty"`
	PendingLinks   map[string]string `json:"pendingLinks,omitempty"` // linkId -> 对端用户名
}

type LinkStatus string

const (
	LinkPending  LinkStatus = "pending"
	LinkActive   LinkStatus = "active"
	LinkInactive LinkStatus = "inactive"
)

type LinkView struct {
	ID        string     `json:"id"`
	NodeA     string     `json:"nodeA"`
	NodeB     string     `json:"nodeB"`
	PathA     geo.LatLng `json:"pathA"`
	PathB     geo.LatLng `json:"pathB"`
	Capacity  int        `json:"capacity"`
	Status    LinkStatus `json:"status"`
	CreatedAt int64      `json:"createdAt"`
}

type PointView struct {
	ID           string         `json:"id"`
	Coordinates  geo.LatLng     `json:"coordinates"`
	Links        []string       `json:"links"`
	Stakes       map[string]int `json:"stakes"`
	Controller   string         `json:"controller,omitempty"`
	TotalStake   int            `json:"totalStake"`
	LastActivity int64          `json:"lastActivity"`
	CreatedAt    int64          `json:"createdAt"`
}

type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

type OrderView struct {
	ID        string  `json:"id"`
	Node      string  `json:"node"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Amount    int     `json:"amount"`
	CreatedAt int64   `json:"createdAt"`
}

type PricePoint struct {
	At    int64   `json:"at"`
	Price float64 `json:"price"`
}

type MarketView struct {
	Bids      []OrderView  `json:"bids"`
	Asks      []OrderView  `json:"asks"`
	LastPrice float64      `json:"lastPrice"`
	History   []PricePoint `json:"history,omitempty"`
}

// Fill 是一次撮合成交：按 maker（挂单方）价格成交。
type Fill struct {
	Price  float64 `json:"price"`
	Amount int     `json:"amount"`
	Maker  string  `json:"maker"`
	Taker  string  `json:"taker"`
	At     int64   `json:"at"`
}
