package geo

import (
	"math"
	"testing"
)

func TestSegmentIntersection_十字相交(t *testing.T) {
	p, ok := SegmentIntersection(
		LatLng{Lat: -1, Lng: 0}, LatLng{Lat: 1, Lng: 0},
		LatLng{Lat: 0, Lng: -1}, LatLng{Lat: 0, Lng: 1},
	)
	if !ok {
		t.Fatalf("期望相交")
	}
	if math.Abs(p.Lat) > 1e-9 || math.Abs(p.Lng) > 1e-9 {
		t.Fatalf("期望交点在原点, got=%+v", p)
	}
}

func TestSegmentIntersection_平行拒绝(t *testing.T) {
	_, ok := SegmentIntersection(
		LatLng{Lat: 0, Lng: 0}, LatLng{Lat: 0, Lng: 10},
		LatLng{Lat: 1, Lng: 0}, LatLng{Lat: 1, Lng: 10},
	)
	if ok {
		t.Fatalf("平行线段不应判定相交")
	}
}

func TestSegmentIntersection_延长线相交不算(t *testing.T) {
	// 两条线段的延长线在 (0,0) 相交，但参数都落在 [0,1] 之外
	_, ok := SegmentIntersection(
		LatLng{Lat: 1, Lng: 1}, LatLng{Lat: 2, Lng: 2},
		LatLng{Lat: 1, Lng: -1}, LatLng{Lat: 2, Lng: -2},
	)
	if ok {
		t.Fatalf("仅延长线相交不应判定相交")
	}
}

func TestSegmentIntersection_端点相接(t *testing.T) {
	// 共享端点算相交（t=0 / u=0 在 [0,1] 内）
	_, ok := SegmentIntersection(
		LatLng{Lat: 0, Lng: 0}, LatLng{Lat: 1, Lng: 1},
		LatLng{Lat: 0, Lng: 0}, LatLng{Lat: -1, Lng: 1},
	)
	if !ok {
		t.Fatalf("共享端点应判定相交")
	}
}

func TestPlaceNode_基准位置稳定且在合法范围(t *testing.T) {
	for _, name := range []string{"alice", "bob", "carol", ""} {
		p := PlaceNode(name)
		if p.Lat < -85 || p.Lat > 85 {
			t.Fatalf("纬度越界: %+v", p)
		}
		if p.Lng < -180 || p.Lng >= 180 {
			t.Fatalf("经度越界: %+v", p)
		}
		// 同名两次生成应落在同一基准附近（抖动 ±0.5 度 + 各自随机）
		q := PlaceNode(name)
		if math.Abs(p.Lat-q.Lat) > 1.1 || math.Abs(p.Lng-q.Lng) > 1.1 {
			t.Fatalf("同名位置偏差过大: %+v vs %+v", p, q)
		}
	}
}
