package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"Foam/internal/shared/actor/messages"
)

// Order 是簿中挂单，amount 只会被撮合递减，不会为负。
type Order struct {
	ID        string
	NodeID    string
	Side      messages.Side
	Price     float64
	Amount    int
	CreatedAt time.Time
	seq       uint64 // 同价位的时间优先序
}

// Book 是全局唯一的双边连续竞价簿：
// bids 按价格降序、asks 按价格升序，同价按到达顺序。
type Book struct {
	bids []*Order
	asks []*Order

	lastPrice    float64
	history      []messages.PricePoint
	historyLimit int

	nextSeq uint64
	dirty   bool
}

func NewBook(historyLimit int) *Book {
	if historyLimit <= 0 {
		historyLimit = 256
	}
	return &Book{historyLimit: historyLimit}
}

func (b *Book) LastPrice() float64 { return b.lastPrice }
func (b *Book) Dirty() bool        { return b.dirty }
func (b *Book) ClearDirty()        { b.dirty = false }

// Place 撮合进单并把余量入簿。成交按 maker（挂单方）价格，
// 每笔成交写入价格历史并推进 lastPrice。返回入簿后的订单视图
// （完全成交则 Amount 为 0，不入簿）与成交列表。
func (b *Book) Place(nodeID string, side messages.Side, price float64, amount int, now time.Time) (messages.OrderView, []messages.Fill) {
	o := &Order{
		ID:        uuid.NewString(),
		NodeID:    nodeID,
		Side:      side,
		Price:     price,
		Amount:    amount,
		CreatedAt: now,
		seq:       b.nextSeq,
	}
	b.nextSeq++

	var fills []messages.Fill
	switch side {
	case messages.SideBid:
		for o.Amount > 0 && len(b.asks) > 0 && b.asks[0].Price <= o.Price {
			fills = append(fills, b.fill(b.asks[0], o, now))
			if b.asks[0].Amount == 0 {
				b.asks = b.asks[1:]
			}
		}
		if o.Amount > 0 {
			b.bids = insertOrder(b.bids, o, lessBid)
		}
	case messages.SideAsk:
		for o.Amount > 0 && len(b.bids) > 0 && b.bids[0].Price >= o.Price {
			fills = append(fills, b.fill(b.bids[0], o, now))
			if b.bids[0].Amount == 0 {
				b.bids = b.bids[1:]
			}
		}
		if o.Amount > 0 {
			b.asks = insertOrder(b.asks, o, lessAsk)
		}
	}
	b.dirty = true
	return orderView(o), fills
}

// fill 按 maker 价成交 min(双方余量)，双方余量同步递减。
func (b *Book) fill(maker, taker *Order, now time.Time) messages.Fill {
	n := taker.Amount
	if maker.Amount < n {
		n = maker.Amount
	}
	maker.Amount -= n
	taker.Amount -= n
	b.lastPrice = maker.Price
	b.pushHistory(now, maker.Price)
	return messages.Fill{
		Price:  maker.Price,
		Amount: n,
		Maker:  maker.NodeID,
		Taker:  taker.NodeID,
		At:     now.UnixNano() / 1e6,
	}
}

func (b *Book) pushHistory(now time.Time, price float64) {
	b.history = append(b.history, messages.PricePoint{At: now.UnixNano() / 1e6, Price: price})
	if len(b.history) > b.historyLimit {
		b.history = b.history[len(b.history)-b.historyLimit:]
	}
}

// Cancel 撤单：只能撤自己的单。返回订单方向与 ask 的未成交余量
// （bid 无托管、余量恒 0）。
func (b *Book) Cancel(orderID, nodeID string) (messages.Side, int, bool) {
	if i := findOrder(b.bids, orderID, nodeID); i >= 0 {
		b.bids = append(b.bids[:i], b.bids[i+1:]...)
		b.dirty = true
		return messages.SideBid, 0, true
	}
	if i := findOrder(b.asks, orderID, nodeID); i >= 0 {
		rest := b.asks[i].Amount
		b.asks = append(b.asks[:i], b.asks[i+1:]...)
		b.dirty = true
		return messages.SideAsk, rest, true
	}
	return "", 0, false
}

func findOrder(book []*Order, orderID, nodeID string) int {
	for i, o := range book {
		if o.ID == orderID {
			if o.NodeID != nodeID {
				return -1
			}
			return i
		}
	}
	return -1
}

func lessBid(a, b *Order) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.seq < b.seq
}

func lessAsk(a, b *Order) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.seq < b.seq
}

func insertOrder(book []*Order, o *Order, less func(a, b *Order) bool) []*Order {
	i := sort.Search(len(book), func(i int) bool { return less(o, book[i]) })
	book = append(book, nil)
	copy(book[i+1:], book[i:])
	book[i] = o
	return book
}

func orderView(o *Order) messages.OrderView {
	return messages.OrderView{
		ID:        o.ID,
		Node:      o.NodeID,
		Side:      o.Side,
		Price:     o.Price,
		Amount:    o.Amount,
		CreatedAt: o.CreatedAt.UnixNano() / 1e6,
	}
}

func (b *Book) View(withHistory bool) messages.MarketView {
	v := messages.MarketView{
		Bids:      make([]messages.OrderView, 0, len(b.bids)),
		Asks:      make([]messages.OrderView, 0, len(b.asks)),
		LastPrice: b.lastPrice,
	}
	for _, o := range b.bids {
		v.Bids = append(v.Bids, orderView(o))
	}
	for _, o := range b.asks {
		v.Asks = append(v.Asks, orderView(o))
	}
	if withHistory {
		v.History = append([]messages.PricePoint(nil), b.history...)
	}
	return v
}
