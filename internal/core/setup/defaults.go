package setup

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/collision"
	"github.com/zeusync/chickadee/internal/core/components"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// Stock component type names.
const (
	TypeCamera           = "camera"
	TypeCameraController = "camera_controller"
	TypeModel            = "model"
	TypeCollider         = "collider"
)

// DefaultRegistry knows the stock components.
func DefaultRegistry() Registry {
	r := NewRegistry()
	r.Register(TypeCamera, newCamera)
	r.Register(TypeCameraController, newCameraController)
	r.Register(TypeModel, newModel)
	r.Register(TypeCollider, newCollider)
	return r
}

func newCamera(p Params) (scene.Component, error) {
	c := components.NewCamera()
	var err error
	if c.Fovy, err = p.Float("fovy", c.Fovy); err != nil {
		return nil, err
	}
	if c.Aspect, err = p.Float("aspect", c.Aspect); err != nil {
		return nil, err
	}
	if c.ZNear, err = p.Float("znear", c.ZNear); err != nil {
		return nil, err
	}
	if c.ZFar, err = p.Float("zfar", c.ZFar); err != nil {
		return nil, err
	}
	if c.ZNear <= 0 || c.ZFar <= c.ZNear {
		return nil, fmt.Errorf("%w: need 0 < znear < zfar", ErrInvalidParam)
	}
	return c, nil
}

func newCameraController(p Params) (scene.Component, error) {
	c := components.NewCameraController()
	var err error
	if c.WalkSpeed, err = p.Float("walk_speed", c.WalkSpeed); err != nil {
		return nil, err
	}
	if c.LookSpeed, err = p.Float("look_speed", c.LookSpeed); err != nil {
		return nil, err
	}
	if c.Width, err = p.Float("width", c.Width); err != nil {
		return nil, err
	}
	if c.Height, err = p.Float("height", c.Height); err != nil {
		return nil, err
	}
	captured, err := p.Bool("captured", c.Captured())
	if err != nil {
		return nil, err
	}
	c.SetCaptured(captured)
	return c, nil
}

func newModel(p Params) (scene.Component, error) {
	mesh, err := p.Text("mesh", "")
	if err != nil {
		return nil, err
	}
	if mesh == "" {
		return nil, fmt.Errorf("%w: mesh is required", ErrInvalidParam)
	}
	material, err := p.Text("material", "")
	if err != nil {
		return nil, err
	}
	return components.NewModel(mesh, material), nil
}

func newCollider(p Params) (scene.Component, error) {
	shape, err := p.Text("shape", collision.AxisAlignedBox{}.Kind())
	if err != nil {
		return nil, err
	}
	if shape != (collision.AxisAlignedBox{}).Kind() {
		return nil, fmt.Errorf("%w: unsupported shape %q", ErrInvalidParam, shape)
	}
	center, err := p.Vec3("center", mgl32.Vec3{})
	if err != nil {
		return nil, err
	}
	half, err := p.Vec3("half_extents", mgl32.Vec3{0.5, 0.5, 0.5})
	if err != nil {
		return nil, err
	}
	dynamic, err := p.Bool("dynamic", false)
	if err != nil {
		return nil, err
	}
	return scene.NewAABBCollider(center, half, dynamic), nil
}
