package model

import (
	"time"

	"Foam/internal/market/entity"
	"Foam/internal/shared/actor/messages"
)

// v1: 无 next_seq，时间优先序仅由数组位置隐含
// v2: 当前
const MarketSchemaVersion = 2

// MarketDocID 全局唯一订单簿的固定文档主键。
const MarketDocID = "market"

type OrderDoc struct {
	ID        string    `bson:"id"`
	NodeID    string    `bson:"node_id"`
	Side      string    `bson:"side"`
	Price     float64   `bson:"price"`
	Amount    int       `bson:"amount"`
	CreatedAt time.Time `bson:"created_at"`
	Seq       uint64    `bson:"seq"`
}

type PricePointDoc struct {
	At    int64   `bson:"at"`
	Price float64 `bson:"price"`
}

type MarketDoc struct {
	ID            string          `bson:"_id"`
	SchemaVersion int             `bson:"schema_version"`
	Bids          []OrderDoc      `bson:"bids"`
	Asks          []OrderDoc      `bson:"asks"`
	LastPrice     float64         `bson:"last_price"`
	History       []PricePointDoc `bson:"history"`
	HistoryLimit  int             `bson:"history_limit"`
	NextSeq       uint64          `bson:"next_seq"`
}

func migrateMarketDoc(doc *MarketDoc) {
	switch doc.SchemaVersion {
	case 0, 1:
		// 用数组位置重建序号：bids/asks 本身就按优先序持久化。
		var seq uint64
		for i := range doc.Bids {
			doc.Bids[i].Seq = seq
			seq++
		}
		for i := range doc.Asks {
			doc.Asks[i].Seq = seq
			seq++
		}
		doc.NextSeq = seq
		doc.SchemaVersion = MarketSchemaVersion
	}
}

func MarketDocToState(doc MarketDoc) entity.BookState {
	migrateMarketDoc(&doc)
	s := entity.BookState{
		LastPrice:    doc.LastPrice,
		HistoryLimit: doc.HistoryLimit,
		NextSeq:      doc.NextSeq,
	}
	for _, o := range doc.Bids {
		s.Bids = append(s.Bids, orderFromDoc(o))
	}
	for _, o := range doc.Asks {
		s.Asks = append(s.Asks, orderFromDoc(o))
	}
	for _, p := range doc.History {
		s.History = append(s.History, messages.PricePoint{At: p.At, Price: p.Price})
	}
	return s
}

func MarketStateToDoc(s entity.BookState) MarketDoc {
	doc := MarketDoc{
		ID:            MarketDocID,
		SchemaVersion: MarketSchemaVersion,
		LastPrice:     s.LastPrice,
		HistoryLimit:  s.HistoryLimit,
		NextSeq:       s.NextSeq,
	}
	for _, o := range s.Bids {
		doc.Bids = append(doc.Bids, orderToDoc(o))
	}
	for _, o := range s.Asks {
		doc.Asks = append(doc.Asks, orderToDoc(o))
	}
	for _, p := range s.History {
		doc.History = append(doc.History, PricePointDoc{At: p.At, Price: p.Price})
	}
	return doc
}

func orderFromDoc(o OrderDoc) entity.OrderState {
	return entity.OrderState{
		ID: o.ID, NodeID: o.NodeID, Side: o.Side,
		Price: o.Price, Amount: o.Amount, CreatedAt: o.CreatedAt, Seq: o.Seq,
	}
}

func orderToDoc(o entity.OrderState) OrderDoc {
	return OrderDoc{
		ID: o.ID, NodeID: o.NodeID, Side: o.Side,
		Price: o.Price, Amount: o.Amount, CreatedAt: o.CreatedAt, Seq: o.Seq,
	}
}
