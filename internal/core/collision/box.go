package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoxCorrection computes the minimum single-axis push for box a (center pa,
// half extents ea) out of box b (center pb, half extents eb).
//
// On each axis a is pushed toward the side it already leans to. The axis with
// the smallest absolute displacement wins; ties resolve x, then y, then z.
func BoxCorrection(pa, ea, pb, eb mgl32.Vec3) (mgl32.Vec3, bool) {
	var d mgl32.Vec3
	for i := 0; i < 3; i++ {
		if pa[i] > pb[i] {
			d[i] = (pb[i] + eb[i]) - (pa[i] - ea[i])
			if !(d[i] > 0) {
				return mgl32.Vec3{}, false
			}
		} else {
			d[i] = (pb[i] - eb[i]) - (pa[i] + ea[i])
			if !(d[i] < 0) {
				return mgl32.Vec3{}, false
			}
		}
	}

	axis := 0
	for i := 1; i < 3; i++ {
		if abs(d[i]) < abs(d[axis]) {
			axis = i
		}
	}

	var out mgl32.Vec3
	out[axis] = d[axis]
	return out, true
}

func abs(v float32) float32 { return float32(math.Abs(float64(v))) }
