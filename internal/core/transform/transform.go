// Package transform implements the affine transform value type shared by the
// scene graph, the collision pass and the renderer-facing draw list.
//
// A Transform is an orthonormal 3x3 linear part plus a translation, the upper
// block of the homogeneous matrix
//
//	a00 a01 a02 t0
//	a10 a11 a12 t1
//	a20 a21 a22 t2
//	0   0   0   1
//
// +z points out of the screen.
package transform

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a value type; every operation returns a new Transform or
// mutates the receiver in place, never shared state.
type Transform struct {
	a mgl32.Mat3
	t mgl32.Vec3
}

// Identity is the neutral element of Mul: T(x) = x.
func Identity() Transform {
	return Transform{a: mgl32.Ident3()}.CheckInvariants()
}

// New builds a transform from an explicit linear part and translation.
// The linear part must be orthonormal.
func New(a mgl32.Mat3, t mgl32.Vec3) Transform {
	return Transform{a: a, t: t}.CheckInvariants()
}

// FromTranslation returns a transform that only applies v as a translation.
func FromTranslation(v mgl32.Vec3) Transform {
	return Transform{a: mgl32.Ident3(), t: v}.CheckInvariants()
}

func FromAngleX(theta float32) Transform {
	return Transform{a: mgl32.Rotate3DX(theta)}.CheckInvariants()
}

func FromAngleY(theta float32) Transform {
	return Transform{a: mgl32.Rotate3DY(theta)}.CheckInvariants()
}

func FromAngleZ(theta float32) Transform {
	return Transform{a: mgl32.Rotate3DZ(theta)}.CheckInvariants()
}

// FromEuler builds the Z·Y·X rotation used by the euler rotate operations.
// Every angle is negated; camera and controller code rely on this sign.
func FromEuler(euler mgl32.Vec3) Transform {
	return Transform{a: eulerMatrix(euler)}.CheckInvariants()
}

func eulerMatrix(euler mgl32.Vec3) mgl32.Mat3 {
	x := mgl32.Rotate3DX(-euler.X())
	y := mgl32.Rotate3DY(-euler.Y())
	z := mgl32.Rotate3DZ(-euler.Z())
	return z.Mul3(y).Mul3(x)
}

// Mul composes two transforms: the result applies rhs first, then t.
func (t Transform) Mul(rhs Transform) Transform {
	return Transform{
		a: t.a.Mul3(rhs.a),
		t: t.a.Mul3x1(rhs.t).Add(t.t),
	}.CheckInvariants()
}

// Inverse relies on the linear part being orthonormal, so it is a transpose.
func (t Transform) Inverse() Transform {
	a := t.a.Transpose()
	return Transform{
		a: a,
		t: a.Mul3x1(t.t.Mul(-1)),
	}.CheckInvariants()
}

// Apply maps a point: a·p + t.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.a.Mul3x1(p).Add(t.t)
}

// ApplyVector maps a direction: a·v, translation excluded.
func (t Transform) ApplyVector(v mgl32.Vec3) mgl32.Vec3 {
	return t.a.Mul3x1(v)
}

func (t Transform) Translation() mgl32.Vec3 { return t.t }

func (t Transform) Linear() mgl32.Mat3 { return t.a }

// TranslateLocal moves along the transform's own axes. Equivalent to
// t = t · FromTranslation(v).
func (t *Transform) TranslateLocal(v mgl32.Vec3) {
	t.t = t.t.Add(t.a.Mul3x1(v))
}

// TranslateGlobal moves along the axes of the space the transform lives in.
func (t *Transform) TranslateGlobal(v mgl32.Vec3) {
	t.t = t.t.Add(v)
}

// RotateEulerLocal post-multiplies the linear part: rotation about the
// transform's own axes.
func (t *Transform) RotateEulerLocal(euler mgl32.Vec3) {
	t.a = orthonormalize(t.a.Mul3(eulerMatrix(euler)))
	t.CheckInvariants()
}

// RotateEulerGlobal pre-multiplies the linear part: rotation about the parent
// axes, position unchanged.
func (t *Transform) RotateEulerGlobal(euler mgl32.Vec3) {
	t.a = orthonormalize(eulerMatrix(euler).Mul3(t.a))
	t.CheckInvariants()
}

// orthonormalize runs Gram-Schmidt over the columns of a. Accumulated
// rotations drift away from orthonormal in float32; handedness is kept.
func orthonormalize(a mgl32.Mat3) mgl32.Mat3 {
	x := a.Col(0).Normalize()
	y := a.Col(1)
	y = y.Sub(x.Mul(x.Dot(y))).Normalize()
	z := a.Col(2)
	z = z.Sub(x.Mul(x.Dot(z))).Sub(y.Mul(y.Dot(z))).Normalize()
	return mgl32.Mat3FromCols(x, y, z)
}

// Matrix returns the homogeneous column-major matrix consumed by renderers.
func (t Transform) Matrix() mgl32.Mat4 {
	m := t.a.Mat4()
	m[12], m[13], m[14] = t.t.X(), t.t.Y(), t.t.Z()
	return m
}

// ApproxEqual compares both parts element-wise within eps.
func (t Transform) ApproxEqual(o Transform, eps float32) bool {
	for i := range t.a {
		if !near(t.a[i], o.a[i], eps) {
			return false
		}
	}
	return VecApproxEqual(t.t, o.t, eps)
}

// VecApproxEqual compares two vectors component-wise with an absolute tolerance.
func VecApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	return near(a[0], b[0], eps) && near(a[1], b[1], eps) && near(a[2], b[2], eps)
}

func (t Transform) String() string {
	return fmt.Sprintf("Transform{a: %v, t: %v}", t.a, t.t)
}
