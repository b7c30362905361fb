package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/collision"
)

// Collider gives its entity a collision shape. Dynamic colliders are moved
// by the collision pass; static ones only push.
type Collider struct {
	Base

	Shape   collision.Shape
	Dynamic bool
}

func NewCollider(shape collision.Shape, dynamic bool) *Collider {
	return &Collider{Shape: shape, Dynamic: dynamic}
}

// NewAABBCollider is a shortcut for an axis-aligned box centered on
// center (entity-relative) with the given half extents.
func NewAABBCollider(center, halfExtents mgl32.Vec3, dynamic bool) *Collider {
	return NewCollider(collision.NewAABB(center, halfExtents), dynamic)
}
