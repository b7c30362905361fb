package transform

import (
	"fmt"
	"math"
)

// InvariantEpsilon is the tolerance used for the orthonormality check.
const InvariantEpsilon float32 = 1e-3

// CheckInvariants panics when the linear part is non-finite or not
// orthonormal. Only builds tagged `debug` run the check; elsewhere it
// returns t unchanged.
func (t Transform) CheckInvariants() Transform {
	if !invariantChecks {
		return t
	}
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}

// Validate reports the first violated invariant, or nil.
func (t Transform) Validate() error {
	for _, v := range t.a {
		if !finite(v) {
			return fmt.Errorf("transform should not be infinite: %v", t.a)
		}
	}
	for _, v := range t.t {
		if !finite(v) {
			return fmt.Errorf("transform translation should not be infinite: %v", t.t)
		}
	}

	x, y, z := t.a.Col(0), t.a.Col(1), t.a.Col(2)
	xy, yz, zx, xx := x.Dot(y), y.Dot(z), z.Dot(x), x.Dot(x)
	if !near(xy, 0, InvariantEpsilon) ||
		!near(yz, 0, InvariantEpsilon) ||
		!near(zx, 0, InvariantEpsilon) ||
		!near(xx, 1, InvariantEpsilon) {
		return fmt.Errorf(
			"linear part of transform is not orthonormal: %v, %v,%v,%v should all be 0, and %v should be 1",
			t.a, xy, yz, zx, xx)
	}
	return nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// near is an absolute-difference comparison; mgl32's FloatEqualThreshold is
// relative and far stricter around zero.
func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}
