// Package collision holds collider geometry and the overlap correction maths
// used by the scene collision pass.
package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/transform"
)

// Shape is a closed set of collider geometries. Only AxisAlignedBox exists.
type Shape interface {
	// Kind names the geometry for logs and scene files.
	Kind() string
	shape()
}

var _ Shape = AxisAlignedBox{}

// AxisAlignedBox is a box in the collider's local space. The box never
// rotates or scales with its entity; only the entity translation moves it.
type AxisAlignedBox struct {
	Center mgl32.Vec3
	// HalfExtents holds half-width, half-height and half-depth.
	HalfExtents mgl32.Vec3
}

func NewAABB(center, halfExtents mgl32.Vec3) AxisAlignedBox {
	return AxisAlignedBox{Center: center, HalfExtents: halfExtents}
}

func (AxisAlignedBox) Kind() string { return "aabb" }

func (AxisAlignedBox) shape() {}

// WorldCenter places the box center using only the translation of global.
func (b AxisAlignedBox) WorldCenter(global transform.Transform) mgl32.Vec3 {
	return b.Center.Add(global.Translation())
}

// Correction returns the vector that separates a from b when a moves by it,
// or false when the shapes do not overlap.
func Correction(a Shape, aGlobal transform.Transform, b Shape, bGlobal transform.Transform) (mgl32.Vec3, bool) {
	switch a := a.(type) {
	case AxisAlignedBox:
		switch b := b.(type) {
		case AxisAlignedBox:
			return BoxCorrection(a.WorldCenter(aGlobal), a.HalfExtents, b.WorldCenter(bGlobal), b.HalfExtents)
		}
	}
	return mgl32.Vec3{}, false
}
