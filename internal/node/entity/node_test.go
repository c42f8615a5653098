package entity

import (
	"testing"
	"time"

	"Foam/internal/shared/geo"
)

func newTestNode() *Node {
	return NewNode("alice", 100, 1, geo.LatLng{Lat: 10, Lng: 20})
}

func TestDebit_余额不足时不改状态(t *testing.T) {
	n := newTestNode()
	if n.Debit(101) {
		t.Fatalf("期望余额不足扣款失败")
	}
	if n.Balance() != 100 {
		t.Fatalf("失败的扣款不应改余额, got=%d", n.Balance())
	}
	if !n.Debit(100) {
		t.Fatalf("足额扣款应成功")
	}
	if n.Balance() != 0 {
		t.Fatalf("balance=%d", n.Balance())
	}
}

func TestCredit_负数入账钳到零(t *testing.T) {
	n := newTestNode()
	n.Credit(-9999)
	if n.Balance() != 0 {
		t.Fatalf("余额不变量被破坏: %d", n.Balance())
	}
}

func TestAdjustHeat_钳在0到100(t *testing.T) {
	n := newTestNode()
	n.AdjustHeat(250)
	if n.Heat() != 100 {
		t.Fatalf("heat=%d", n.Heat())
	}
	n.AdjustHeat(-300)
	if n.Heat() != 0 {
		t.Fatalf("heat=%d", n.Heat())
	}
}

func TestProduceTick_控制交点加成与小数累计(t *testing.T) {
	n := newTestNode()
	n.SetControlled("p1", true)

	// 产率 1 + 0.5×1 = 1.5：第一次入账 1（余 0.5），第二次入账 2（0.5+1.5）
	got1 := n.ProduceTick()
	got2 := n.ProduceTick()
	if got1 != 1 || got2 != 2 {
		t.Fatalf("期望 1 然后 2, got=%d,%d", got1, got2)
	}
	if n.Balance() != 103 {
		t.Fatalf("balance=%d", n.Balance())
	}
}

func TestProduceTick_热度每次衰减1且不过零(t *testing.T) {
	n := newTestNode()
	n.AdjustHeat(2)
	for i := 0; i < 5; i++ {
		n.ProduceTick()
	}
	if n.Heat() != 0 {
		t.Fatalf("heat=%d", n.Heat())
	}
}

func TestTakePendingIn_重复取出报告Stale(t *testing.T) {
	n := newTestNode()
	n.AddPendingIn(PendingLink{LinkID: "l1", Peer: "bob", CreatedAt: time.Now()})

	if _, ok := n.TakePendingIn("l1"); !ok {
		t.Fatalf("第一次取出应成功")
	}
	if _, ok := n.TakePendingIn("l1"); ok {
		t.Fatalf("重复取出应失败（幂等检测）")
	}
}

func TestExpirePending_只清理超TTL的(t *testing.T) {
	n := newTestNode()
	now := time.Now()
	n.AddPendingIn(PendingLink{LinkID: "old", Peer: "bob", CreatedAt: now.Add(-time.Hour)})
	n.AddPendingOut(PendingLink{LinkID: "fresh", Peer: "carol", CreatedAt: now})

	expired := n.ExpirePending(10*time.Minute, now)
	if len(expired) != 1 || expired[0].LinkID != "old" {
		t.Fatalf("期望只清理 old, got=%+v", expired)
	}
	if _, ok := n.TakePendingIn("old"); ok {
		t.Fatalf("old 应已被清理")
	}
	if !n.DropPendingOut("fresh") {
		t.Fatalf("fresh 应保留")
	}
}

func TestSnapshot_Hydrate_往返(t *testing.T) {
	n := newTestNode()
	n.AddLink("l1")
	n.RecordStake("p1", 5)
	n.SetControlled("p1", true)
	n.AddPendingOut(PendingLink{LinkID: "l2", Peer: "bob", CreatedAt: time.Now()})

	got := Hydrate(n.Snapshot())
	if got.Username() != "alice" || got.Balance() != 100 {
		t.Fatalf("基础字段丢失: %+v", got.View())
	}
	if !got.HasLink("l1") {
		t.Fatalf("link 丢失")
	}
	if got.ControlledCount() != 1 {
		t.Fatalf("controlled 丢失")
	}
	if !got.DropPendingOut("l2") {
		t.Fatalf("pendingOut 丢失")
	}
	if got.Dirty() {
		t.Fatalf("加载后的实体不应带脏标记")
	}
}
