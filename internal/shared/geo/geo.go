package geo

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// LatLng 是实体的地理坐标（度）。
type LatLng struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// nearParallelEps 是参数法求交时的行列式阈值，绝对值小于它视为近平行，直接拒绝。
const nearParallelEps = 1e-12

// SegmentIntersection 用标准参数法判断线段 a1→a2 与 b1→b2 是否相交。
// 仅接受两个参数都落在 [0,1] 的真相交；近平行（行列式过小）一律拒绝，
// 不处理共线重叠的情况。
func SegmentIntersection(a1, a2, b1, b2 LatLng) (LatLng, bool) {
	d1x := a2.Lng - a1.Lng
	d1y := a2.Lat - a1.Lat
	d2x := b2.Lng - b1.Lng
	d2y := b2.Lat - b1.Lat

	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < nearParallelEps {
		return LatLng{}, false
	}

	ex := b1.Lng - a1.Lng
	ey := b1.Lat - a1.Lat

	t := (ex*d2y - ey*d2x) / denom
	u := (ex*d1y - ey*d1x) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return LatLng{}, false
	}

	return LatLng{
		Lat: a1.Lat + t*d1y,
		Lng: a1.Lng + t*d1x,
	}, true
}

// PlaceNode 为新节点生成坐标：用户名哈希决定基准位置（稳定可复现），
// 再叠加 ±0.5 度随机抖动做隐私模糊。纬度限制在人类居住带附近。
func PlaceNode(name string) LatLng {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()

	lat := -55 + float64(sum%1_000_000)/1_000_000*125 // [-55, 70)
	lng := -180 + float64((sum>>20)%1_000_000)/1_000_000*360

	lat += (rand.Float64() - 0.5)
	lng += (rand.Float64() - 0.5)

	return LatLng{
		Lat: clamp(lat, -85, 85),
		Lng: wrapLng(lng),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapLng(lng float64) float64 {
	for lng >= 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
