package entity

import (
	"testing"
	"time"

	"Foam/internal/shared/geo"
)

func newTestPoint(now time.Time) *Point {
	return NewPoint("pt-1", geo.LatLng{Lat: 10, Lng: 20},
		[]string{"lk-a", "lk-b"},
		[]string{"alice", "bob", "carol", "dave"}, now)
}

func TestInvest_首次投入获得控制权(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)

	if p.Controller() != "" {
		t.Fatalf("零投入不应有控制者, got %q", p.Controller())
	}
	prev := p.Invest("alice", 30, now)
	if prev != "" {
		t.Fatalf("投入前控制者应为空, got %q", prev)
	}
	if p.Controller() != "alice" || p.TotalStake() != 30 {
		t.Fatalf("controller=%q total=%d", p.Controller(), p.TotalStake())
	}
}

func TestInvest_平票时最早入池者保持控制(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)

	p.Invest("alice", 50, now)
	p.Invest("bob", 50, now) // 追平但不超过
	if p.Controller() != "alice" {
		t.Fatalf("平票应由先入池的 alice 保持, got %q", p.Controller())
	}
	p.Invest("bob", 1, now) // 严格超过才夺取
	if p.Controller() != "bob" {
		t.Fatalf("bob 51 > alice 50 应夺取控制, got %q", p.Controller())
	}
}

func TestDecay_间隔未到不衰减(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)
	p.Invest("alice", 100, now)

	_, decayed := p.Decay(0.1, 5*time.Minute, now.Add(time.Minute))
	if decayed {
		t.Fatal("活动后 1 分钟不应触发 5 分钟衰减")
	}
	if p.Stake("alice") != 100 {
		t.Fatalf("stake 不应变化, got %d", p.Stake("alice"))
	}
}

func TestDecay_向下取整并逐步清空(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)
	p.Invest("alice", 100, now)

	at := now.Add(5 * time.Minute)
	if _, decayed := p.Decay(0.1, 5*time.Minute, at); !decayed {
		t.Fatal("间隔已到应触发衰减")
	}
	if p.Stake("alice") != 90 {
		t.Fatalf("100×0.9=90, got %d", p.Stake("alice"))
	}

	// 连续衰减直到归零：条目移除、控制权释放。
	for i := 0; i < 100; i++ {
		at = at.Add(5 * time.Minute)
		p.Decay(0.1, 5*time.Minute, at)
	}
	if p.TotalStake() != 0 || p.Controller() != "" {
		t.Fatalf("衰减到底应清空: total=%d controller=%q", p.TotalStake(), p.Controller())
	}
	if _, ok := p.stakes["alice"]; ok {
		t.Fatal("归零条目应从 stakes 移除")
	}
}

func TestDecay_空池幂等(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)

	if _, decayed := p.Decay(0.1, 5*time.Minute, now.Add(time.Hour)); !decayed {
		t.Fatal("空池也算一次衰减检查命中")
	}
	if p.TotalStake() != 0 || p.Controller() != "" || len(p.stakeOrder) != 0 {
		t.Fatal("空池衰减应保持为空")
	}
}

func TestDecay_归零后平票顺序重建(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)
	p.Invest("alice", 1, now)
	p.Invest("bob", 100, now)

	at := now.Add(5 * time.Minute)
	p.Decay(0.1, 5*time.Minute, at) // alice: floor(0.9)=0 移除
	if _, ok := p.stakes["alice"]; ok {
		t.Fatal("alice 应被移除")
	}
	if p.Controller() != "bob" {
		t.Fatalf("controller=%q", p.Controller())
	}

	// alice 重新入池，顺序应排在 bob 之后：追平 bob 不夺取。
	p.Invest("alice", p.Stake("bob"), at)
	if p.Controller() != "bob" {
		t.Fatalf("重新入池的 alice 平票不应夺取, got %q", p.Controller())
	}
}

func TestCollectToll_无控制者为空操作(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)

	if _, _, ok := p.CollectToll("lk-a", 100, 0.05); ok {
		t.Fatal("无控制者收费应为 no-op")
	}

	p.Invest("alice", 10, now)
	if _, _, ok := p.CollectToll("lk-x", 100, 0.05); ok {
		t.Fatal("链路不在交点上收费应为 no-op")
	}

	ctrl, amt, ok := p.CollectToll("lk-a", 100, 0.05)
	if !ok || ctrl != "alice" || amt != 5 {
		t.Fatalf("ctrl=%q amt=%d ok=%v", ctrl, amt, ok)
	}

	// floor(10×0.05)=0 视为 no-op。
	if _, _, ok := p.CollectToll("lk-a", 10, 0.05); ok {
		t.Fatal("取整为 0 的过路费应为 no-op")
	}
}

func TestSnapshot_往返保留入池顺序(t *testing.T) {
	now := time.Now()
	p := newTestPoint(now)
	p.Invest("alice", 50, now)
	p.Invest("bob", 50, now)

	q := Hydrate(p.Snapshot())
	if q.Controller() != "alice" {
		t.Fatalf("重建后平票裁决应仍是 alice, got %q", q.Controller())
	}
	q.Invest("bob", 0, now)
	if q.Controller() != "alice" {
		t.Fatalf("重建后入池顺序丢失, got %q", q.Controller())
	}
}
