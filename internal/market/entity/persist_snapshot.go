package entity

import (
	"sort"
	"time"

	"Foam/internal/shared/actor/messages"
)

// OrderState / BookState 是持久化快照，seq 必须落盘保住时间优先序。
type OrderState struct {
	ID        string
	NodeID    string
	Side      string
	Price     float64
	Amount    int
	CreatedAt time.Time
	Seq       uint64
}

type BookState struct {
	Bids         []OrderState
	Asks         []OrderState
	LastPrice    float64
	History      []messages.PricePoint
	HistoryLimit int
	NextSeq      uint64
}

func (b *Book) Snapshot() BookState {
	s := BookState{
		LastPrice:    b.lastPrice,
		History:      append([]messages.PricePoint(nil), b.history...),
		HistoryLimit: b.historyLimit,
		NextSeq:      b.nextSeq,
	}
	for _, o := range b.bids {
		s.Bids = append(s.Bids, orderState(o))
	}
	for _, o := range b.asks {
		s.Asks = append(s.Asks, orderState(o))
	}
	return s
}

func orderState(o *Order) OrderState {
	return OrderState{
		ID: o.ID, NodeID: o.NodeID, Side: string(o.Side),
		Price: o.Price, Amount: o.Amount, CreatedAt: o.CreatedAt, Seq: o.seq,
	}
}

// Hydrate 重建订单簿，加载后重排一次兜底历史脏数据。
func Hydrate(s BookState) *Book {
	b := NewBook(s.HistoryLimit)
	b.lastPrice = s.LastPrice
	b.history = append([]messages.PricePoint(nil), s.History...)
	b.nextSeq = s.NextSeq
	for _, o := range s.Bids {
		b.bids = append(b.bids, hydrateOrder(o))
	}
	for _, o := range s.Asks {
		b.asks = append(b.asks, hydrateOrder(o))
	}
	sort.SliceStable(b.bids, func(i, j int) bool { return lessBid(b.bids[i], b.bids[j]) })
	sort.SliceStable(b.asks, func(i, j int) bool { return lessAsk(b.asks[i], b.asks[j]) })
	return b
}

func hydrateOrder(s OrderState) *Order {
	return &Order{
		ID: s.ID, NodeID: s.NodeID, Side: messages.Side(s.Side),
		Price: s.Price, Amount: s.Amount, CreatedAt: s.CreatedAt, seq: s.Seq,
	}
}
