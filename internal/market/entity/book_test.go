package entity

import (
	"testing"
	"time"

	"Foam/internal/shared/actor/messages"
)

func assertSorted(t *testing.T, b *Book) {
	t.Helper()
	for i := 1; i < len(b.bids); i++ {
		if b.bids[i-1].Price < b.bids[i].Price {
			t.Fatalf("bids 未按价格降序: %v vs %v", b.bids[i-1].Price, b.bids[i].Price)
		}
	}
	for i := 1; i < len(b.asks); i++ {
		if b.asks[i-1].Price > b.asks[i].Price {
			t.Fatalf("asks 未按价格升序: %v vs %v", b.asks[i-1].Price, b.asks[i].Price)
		}
	}
}

func TestPlace_按挂单价部分成交(t *testing.T) {
	now := time.Now()
	b := NewBook(16)

	b.Place("seller", messages.SideAsk, 5, 10, now)
	_, fills := b.Place("buyer", messages.SideBid, 6, 4, now)

	if len(fills) != 1 {
		t.Fatalf("应有 1 笔成交, got %d", len(fills))
	}
	f := fills[0]
	if f.Price != 5 || f.Amount != 4 || f.Maker != "seller" || f.Taker != "buyer" {
		t.Fatalf("成交应为 4@5(maker seller): %+v", f)
	}
	if b.LastPrice() != 5 {
		t.Fatalf("lastPrice 应推进到挂单价 5, got %v", b.LastPrice())
	}
	if len(b.asks) != 1 || b.asks[0].Amount != 6 {
		t.Fatalf("剩余 ask 应为 6, got %+v", b.asks)
	}
	if len(b.bids) != 0 {
		t.Fatal("完全成交的 bid 不应入簿")
	}
	assertSorted(t, b)
}

func TestPlace_同价对敲清空双边(t *testing.T) {
	now := time.Now()
	b := NewBook(16)

	b.Place("alice", messages.SideBid, 7, 3, now)
	_, fills := b.Place("bob", messages.SideAsk, 7, 3, now)

	if len(fills) != 1 || fills[0].Amount != 3 || fills[0].Price != 7 {
		t.Fatalf("fills=%+v", fills)
	}
	if len(b.bids) != 0 || len(b.asks) != 0 {
		t.Fatal("同价同量应清空双边簿")
	}
	if b.LastPrice() != 7 {
		t.Fatalf("lastPrice=%v", b.LastPrice())
	}
}

func TestPlace_吃穿多档并按价格时间优先(t *testing.T) {
	now := time.Now()
	b := NewBook(16)

	b.Place("s1", messages.SideAsk, 5, 2, now)
	b.Place("s2", messages.SideAsk, 4, 2, now)
	b.Place("s3", messages.SideAsk, 5, 2, now) // 与 s1 同价，时间靠后

	_, fills := b.Place("buyer", messages.SideBid, 5, 5, now)
	if len(fills) != 3 {
		t.Fatalf("应吃三档, got %+v", fills)
	}
	// 先低价 s2，再同价按时间 s1、s3。
	if fills[0].Maker != "s2" || fills[0].Price != 4 || fills[0].Amount != 2 {
		t.Fatalf("第一笔应为 s2 2@4: %+v", fills[0])
	}
	if fills[1].Maker != "s1" || fills[1].Amount != 2 {
		t.Fatalf("第二笔应为 s1: %+v", fills[1])
	}
	if fills[2].Maker != "s3" || fills[2].Amount != 1 {
		t.Fatalf("第三笔应为 s3 余 1: %+v", fills[2])
	}
	if len(b.asks) != 1 || b.asks[0].NodeID != "s3" || b.asks[0].Amount != 1 {
		t.Fatalf("s3 应剩 1: %+v", b.asks)
	}
	assertSorted(t, b)
}

func TestPlace_不交叉则入簿(t *testing.T) {
	now := time.Now()
	b := NewBook(16)

	b.Place("alice", messages.SideBid, 3, 5, now)
	o, fills := b.Place("bob", messages.SideAsk, 4, 5, now)
	if len(fills) != 0 {
		t.Fatal("3 买 4 卖不应成交")
	}
	if o.Amount != 5 {
		t.Fatalf("未成交余量应全额入簿, got %d", o.Amount)
	}
	if b.LastPrice() != 0 {
		t.Fatalf("无成交不应推进 lastPrice, got %v", b.LastPrice())
	}
	assertSorted(t, b)
}

func TestCancel_只能撤自己的单且返还ask余量(t *testing.T) {
	now := time.Now()
	b := NewBook(16)

	ask, _ := b.Place("seller", messages.SideAsk, 5, 10, now)
	b.Place("buyer", messages.SideBid, 6, 4, now) // 吃掉 4

	if _, _, ok := b.Cancel(ask.ID, "mallory"); ok {
		t.Fatal("他人不应能撤单")
	}
	side, refund, ok := b.Cancel(ask.ID, "seller")
	if !ok || side != messages.SideAsk || refund != 6 {
		t.Fatalf("撤单应返还余量 6: side=%s refund=%d ok=%v", side, refund, ok)
	}
	if _, _, ok := b.Cancel(ask.ID, "seller"); ok {
		t.Fatal("重复撤单应失败")
	}

	bid, _ := b.Place("buyer", messages.SideBid, 1, 3, now)
	side, refund, ok = b.Cancel(bid.ID, "buyer")
	if !ok || side != messages.SideBid || refund != 0 {
		t.Fatalf("bid 撤单无托管返还: side=%s refund=%d", side, refund)
	}
}

func TestHistory_有界(t *testing.T) {
	now := time.Now()
	b := NewBook(3)
	for i := 0; i < 5; i++ {
		b.Place("s", messages.SideAsk, float64(i+1), 1, now)
		b.Place("b", messages.SideBid, float64(i+1), 1, now)
	}
	v := b.View(true)
	if len(v.History) != 3 {
		t.Fatalf("历史应截断到 3, got %d", len(v.History))
	}
	if v.History[2].Price != 5 {
		t.Fatalf("应保留最新成交, got %+v", v.History)
	}
}

func TestSnapshot_往返保留时间优先序(t *testing.T) {
	now := time.Now()
	b := NewBook(16)
	b.Place("s1", messages.SideAsk, 5, 2, now)
	b.Place("s2", messages.SideAsk, 5, 2, now)
	b.Place("buyer1", messages.SideBid, 2, 1, now)

	c := Hydrate(b.Snapshot())
	_, fills := c.Place("buyer2", messages.SideBid, 5, 1, now)
	if len(fills) != 1 || fills[0].Maker != "s1" {
		t.Fatalf("重建后同价应仍先成交 s1: %+v", fills)
	}
	assertSorted(t, c)
}
