// Package components holds the stock components shipped with the engine:
// a perspective camera, a first-person camera controller and a drawable
// model.
package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// OpenGLToClip remaps OpenGL clip-space depth [-1, 1] into the [0, 1] range
// expected by modern graphics APIs.
var OpenGLToClip = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

const (
	DefaultFovy   = 45.0
	DefaultAspect = 1.0
	DefaultZNear  = 0.1
	DefaultZFar   = 100.0
)

// Camera projects the scene as seen from its entity. The view projection is
// refreshed on every update from the entity's global transform.
type Camera struct {
	scene.Base

	// Fovy is the vertical field of view in degrees.
	Fovy   float32
	Aspect float32
	ZNear  float32
	ZFar   float32

	viewProjection mgl32.Mat4
}

func NewCamera() *Camera {
	return &Camera{
		Fovy:   DefaultFovy,
		Aspect: DefaultAspect,
		ZNear:  DefaultZNear,
		ZFar:   DefaultZFar,
	}
}

func (c *Camera) UpdateAspect(width, height float32) {
	if height == 0 {
		return
	}
	c.Aspect = width / height
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), c.Aspect, c.ZNear, c.ZFar)
}

// ViewProjection is the matrix computed by the last update. It is zero
// before the first update.
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.viewProjection }

func (c *Camera) OnUpdate(s *scene.Scene, ctx scene.UpdateContext) {
	ref, err := s.Transform(ctx.Entity)
	if err != nil {
		s.Logger().Warn("Camera without transform", log.Entity(ctx.Entity), log.Error(err))
		return
	}
	global, err := scene.Get(ref, (*scene.EntityTransform).Global)
	if err != nil {
		return
	}
	c.viewProjection = OpenGLToClip.Mul4(c.Projection()).Mul4(global.Inverse().Matrix())
}

// CameraViewProjection returns the view projection of the first camera in
// the scene. A scene without a usable camera logs a warning and reports
// false so the caller can keep its previous matrix.
func CameraViewProjection(s *scene.Scene) (mgl32.Mat4, bool) {
	m, ok := scene.FindFirstComponent[*Camera](s)
	if !ok {
		s.Logger().Warn("No camera in scene")
		return mgl32.Ident4(), false
	}
	vp, err := scene.Get(m.Ref, (*Camera).ViewProjection)
	if err != nil {
		s.Logger().Debug("Camera busy", log.Component(m.ID), log.Error(err))
		return mgl32.Ident4(), false
	}
	return vp, true
}
