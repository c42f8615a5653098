package entity

import (
	"testing"
	"time"

	"Foam/internal/shared/actor/messages"
	"Foam/internal/shared/geo"
)

func newTestLink(now time.Time) *Link {
	return NewLink(LinkID("bob", "alice", now), "alice", "bob",
		geo.LatLng{Lat: 1, Lng: 2}, geo.LatLng{Lat: 3, Lng: 4}, 10, now)
}

func TestLinkID_端点顺序无关(t *testing.T) {
	now := time.Now()
	if LinkID("alice", "bob", now) != LinkID("bob", "alice", now) {
		t.Fatal("链路 ID 应与端点顺序无关")
	}
}

func TestActivate_状态机(t *testing.T) {
	l := newTestLink(time.Now())
	if l.Status() != messages.LinkPending {
		t.Fatalf("初始状态应为 pending, got %s", l.Status())
	}
	if !l.Activate() || l.Status() != messages.LinkActive {
		t.Fatal("pending 应可激活")
	}
	if l.Activate() {
		t.Fatal("重复激活应为 no-op")
	}
	if !l.Deactivate() || l.Status() != messages.LinkInactive {
		t.Fatal("active 应可下线")
	}
	if l.Activate() {
		t.Fatal("inactive 不可再激活")
	}
}

func TestUpgrade_只有激活链路可升级(t *testing.T) {
	l := newTestLink(time.Now())
	if _, ok := l.Upgrade(10); ok {
		t.Fatal("pending 链路不应升级成功")
	}
	l.Activate()
	if cap, ok := l.Upgrade(10); !ok || cap != 20 {
		t.Fatalf("cap=%d ok=%v", cap, ok)
	}
	if _, ok := l.Upgrade(0); ok {
		t.Fatal("非正步长应拒绝")
	}
}

func TestFlow_只有激活链路产生流量(t *testing.T) {
	l := newTestLink(time.Now())
	if l.Flow() != 0 {
		t.Fatalf("pending 流量应为 0, got %d", l.Flow())
	}
	l.Activate()
	if l.Flow() != 10 {
		t.Fatalf("active 流量应为容量 10, got %d", l.Flow())
	}
}

func TestRegisterPoint_去重(t *testing.T) {
	l := newTestLink(time.Now())
	l.RegisterPoint("pt-1")
	l.RegisterPoint("pt-1")
	l.RegisterPoint("pt-2")
	if got := l.PointIDs(); len(got) != 2 {
		t.Fatalf("重复注册应去重, got %v", got)
	}
}

func TestSnapshot_往返(t *testing.T) {
	now := time.Now()
	l := newTestLink(now)
	l.Activate()
	l.Upgrade(5)
	l.RegisterPoint("pt-1")

	m := Hydrate(l.Snapshot())
	if m.ID() != l.ID() || m.Capacity() != 15 || m.Status() != messages.LinkActive {
		t.Fatalf("重建不一致: %+v", m.View())
	}
	if got := m.PointIDs(); len(got) != 1 || got[0] != "pt-1" {
		t.Fatalf("交点注册丢失: %v", got)
	}
	if m.Other("alice") != "bob" || m.Other("x") != "" {
		t.Fatal("Other 判定错误")
	}
}
