package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps float32 = 1e-4

func sample() Transform {
	t := FromTranslation(mgl32.Vec3{1, -2, 3}).
		Mul(FromAngleX(0.3)).
		Mul(FromAngleY(-1.1)).
		Mul(FromAngleZ(2.4))
	return t
}

func TestIdentityIsUnit(t *testing.T) {
	s := sample()
	assert.True(t, s.Mul(Identity()).ApproxEqual(s, eps))
	assert.True(t, Identity().Mul(s).ApproxEqual(s, eps))
}

func TestInverse(t *testing.T) {
	s := sample()
	assert.True(t, s.Mul(s.Inverse()).ApproxEqual(Identity(), InvariantEpsilon))
	assert.True(t, s.Inverse().Mul(s).ApproxEqual(Identity(), InvariantEpsilon))
}

func TestMulIsAssociative(t *testing.T) {
	a := FromAngleX(0.7).Mul(FromTranslation(mgl32.Vec3{0, 1, 0}))
	b := FromTranslation(mgl32.Vec3{4, 0, -1}).Mul(FromAngleZ(1.2))
	c := FromAngleY(-0.4)

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	assert.True(t, left.ApproxEqual(right, eps))
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	rot := FromAngleZ(math.Pi / 2)
	move := FromTranslation(mgl32.Vec3{1, 0, 0})

	// translate then rotate: (1,0,0) -> (0,1,0)
	p := rot.Mul(move).Apply(mgl32.Vec3{})
	assert.True(t, VecApproxEqual(p, mgl32.Vec3{0, 1, 0}, eps), "got %v", p)

	// rotate then translate: origin stays at (1,0,0)
	p = move.Mul(rot).Apply(mgl32.Vec3{})
	assert.True(t, VecApproxEqual(p, mgl32.Vec3{1, 0, 0}, eps), "got %v", p)
}

func TestChainedTranslations(t *testing.T) {
	a := FromTranslation(mgl32.Vec3{1, 0, 0})
	b := FromTranslation(mgl32.Vec3{0, 1, 0})
	p := Identity().Mul(a).Mul(b).Apply(mgl32.Vec3{})
	assert.True(t, VecApproxEqual(p, mgl32.Vec3{1, 1, 0}, eps), "got %v", p)
}

func TestApplyVectorIgnoresTranslation(t *testing.T) {
	tr := FromTranslation(mgl32.Vec3{5, 5, 5})
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.ApplyVector(mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, mgl32.Vec3{6, 7, 8}, tr.Apply(mgl32.Vec3{1, 2, 3}))
}

func TestTranslateLocalUsesOwnBasis(t *testing.T) {
	tr := FromAngleZ(math.Pi / 2)
	tr.TranslateLocal(mgl32.Vec3{1, 0, 0})
	assert.True(t, VecApproxEqual(tr.Translation(), mgl32.Vec3{0, 1, 0}, eps), "got %v", tr.Translation())

	// same as post-multiplying a translation
	ref := FromAngleZ(math.Pi / 2).Mul(FromTranslation(mgl32.Vec3{1, 0, 0}))
	assert.True(t, tr.ApproxEqual(ref, eps))
}

func TestTranslateGlobalAddsDirectly(t *testing.T) {
	tr := FromAngleZ(math.Pi / 2)
	tr.TranslateGlobal(mgl32.Vec3{1, 0, 0})
	assert.True(t, VecApproxEqual(tr.Translation(), mgl32.Vec3{1, 0, 0}, eps))
}

func TestEulerSignIsNegated(t *testing.T) {
	assert.True(t, FromEuler(mgl32.Vec3{0, 0, 0.5}).ApproxEqual(FromAngleZ(-0.5), eps))
	assert.True(t, FromEuler(mgl32.Vec3{0.5, 0, 0}).ApproxEqual(FromAngleX(-0.5), eps))

	zyx := FromAngleZ(-0.3).Mul(FromAngleY(-0.2)).Mul(FromAngleX(-0.1))
	assert.True(t, FromEuler(mgl32.Vec3{0.1, 0.2, 0.3}).ApproxEqual(zyx, eps))
}

func TestRotateLocalVersusGlobal(t *testing.T) {
	e := mgl32.Vec3{0, 0.8, 0}
	base := FromTranslation(mgl32.Vec3{2, 0, 0}).Mul(FromAngleX(math.Pi / 2))

	local := base
	local.RotateEulerLocal(e)
	assert.True(t, local.ApproxEqual(base.Mul(FromEuler(e)), eps))

	global := base
	global.RotateEulerGlobal(e)
	assert.True(t, VecApproxEqual(global.Translation(), base.Translation(), eps), "global rotation keeps position")
	want := New(FromEuler(e).Linear().Mul3(base.Linear()), base.Translation())
	assert.True(t, global.ApproxEqual(want, eps))

	assert.False(t, local.ApproxEqual(global, eps))
}

func TestMatrixMatchesApply(t *testing.T) {
	s := sample()
	p := mgl32.Vec3{0.5, -1, 2}
	h := s.Matrix().Mul4x1(p.Vec4(1))
	assert.True(t, VecApproxEqual(h.Vec3(), s.Apply(p), eps))
	assert.Equal(t, float32(1), h.W())
}

func TestInvariantViolationPanics(t *testing.T) {
	if !invariantChecks {
		t.Skip("invariant checks compiled out")
	}
	scaled := mgl32.Ident3().Mul(2)
	assert.Panics(t, func() { New(scaled, mgl32.Vec3{}) })

	nan := float32(math.NaN())
	assert.Panics(t, func() { FromTranslation(mgl32.Vec3{nan, 0, 0}) })
}

func TestValidate(t *testing.T) {
	require.NoError(t, sample().Validate())
	bad := Transform{a: mgl32.Mat3{1, 1, 0, 0, 1, 0, 0, 0, 1}}
	assert.Error(t, bad.Validate())
}

func TestRepeatedRotationStaysOrthonormal(t *testing.T) {
	tr := FromTranslation(mgl32.Vec3{0, 1, 3})
	pitch := mgl32.Vec3{0.003, 0, 0}
	yaw := mgl32.Vec3{0, 0.005, 0}

	for i := 0; i < 200_000; i++ {
		tr.RotateEulerLocal(pitch)
		tr.RotateEulerGlobal(yaw)
	}

	require.NoError(t, tr.Validate())
	assert.NotPanics(t, func() { tr.CheckInvariants() })

	x, y, z := tr.Linear().Col(0), tr.Linear().Col(1), tr.Linear().Col(2)
	assert.InDelta(t, 0, x.Dot(y), 1e-5)
	assert.InDelta(t, 0, y.Dot(z), 1e-5)
	assert.InDelta(t, 0, z.Dot(x), 1e-5)
	for _, c := range []mgl32.Vec3{x, y, z} {
		assert.InDelta(t, 1, c.Len(), 1e-5)
	}
	assert.Greater(t, tr.Linear().Det(), float32(0))
	assert.Equal(t, mgl32.Vec3{0, 1, 3}, tr.Translation())
}

func TestOrthonormalizeKeepsRotation(t *testing.T) {
	a := FromEuler(mgl32.Vec3{0.4, -0.2, 1.3}).Linear()
	got := orthonormalize(a)
	for i := range a {
		assert.InDelta(t, a[i], got[i], 1e-6)
	}
}
