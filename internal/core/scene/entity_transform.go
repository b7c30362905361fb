package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/transform"
)

// EntityTransform places an entity relative to its parent. Every entity owns
// exactly one, created with the entity.
//
// The global transform is cached: after a mutation the transform is dirty
// and Global returns the value from the last propagation until the scene
// propagates again.
//
// Mutators run inside a Write of this transform. TranslateGlobal also reads
// the locals of the ancestors without locking them, so transforms are
// mutated from the goroutine driving the scene.
type EntityTransform struct {
	Base

	// up is the parent's transform, nil for the root.
	up     *EntityTransform
	local  transform.Transform
	global transform.Transform

	dirty    bool
	revision uint64
}

// NewEntityTransform returns an identity transform that is dirty, so the
// next propagation places it under its parent.
func NewEntityTransform() *EntityTransform {
	return &EntityTransform{
		local:  transform.Identity(),
		global: transform.Identity(),
		dirty:  true,
	}
}

func (t *EntityTransform) Local() transform.Transform { return t.local }

// Global is the last propagated world transform.
func (t *EntityTransform) Global() transform.Transform { return t.global }

func (t *EntityTransform) Dirty() bool { return t.dirty }

func (t *EntityTransform) MarkDirty() { t.dirty = true }

// Revision counts how many times the global transform was recomputed.
func (t *EntityTransform) Revision() uint64 { return t.revision }

func (t *EntityTransform) SetLocal(local transform.Transform) {
	t.local = local
	t.dirty = true
}

func (t *EntityTransform) TranslateLocal(v mgl32.Vec3) {
	t.local.TranslateLocal(v)
	t.dirty = true
}

// TranslateGlobal moves the entity by a world-space vector. The parent's
// world basis is composed from the current ancestor locals, so the result
// does not depend on whether the scene has propagated yet.
func (t *EntityTransform) TranslateGlobal(v mgl32.Vec3) {
	// parent linear part is orthonormal: its transpose maps world into parent space
	parent := t.up.world().Linear()
	t.local.TranslateGlobal(parent.Transpose().Mul3x1(v))
	t.dirty = true
}

// world composes the locals from the root down to t. A nil transform is the
// identity.
func (t *EntityTransform) world() transform.Transform {
	if t == nil {
		return transform.Identity()
	}
	return t.up.world().Mul(t.local)
}

func (t *EntityTransform) RotateEulerLocal(euler mgl32.Vec3) {
	t.local.RotateEulerLocal(euler)
	t.dirty = true
}

func (t *EntityTransform) RotateEulerGlobal(euler mgl32.Vec3) {
	t.local.RotateEulerGlobal(euler)
	t.dirty = true
}

func (t *EntityTransform) resolve(parentGlobal transform.Transform) {
	t.global = parentGlobal.Mul(t.local)
	t.dirty = false
	t.revision++
}
