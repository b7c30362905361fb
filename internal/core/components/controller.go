package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
)

const (
	DefaultWalkSpeed = 0.02
	DefaultLookSpeed = 0.001
)

// Window is the optional platform surface a CameraController steers. All
// methods are best effort.
type Window interface {
	Size() (width, height float32)
	SetCursorPosition(x, y float32)
	SetCursorCaptured(captured bool)
}

// CameraController moves its entity like a first-person camera: WASD or the
// arrow keys walk, the cursor looks around while captured and Escape toggles
// capture.
type CameraController struct {
	scene.Base

	WalkSpeed float32
	LookSpeed float32

	// Width and Height describe the viewport when no Window is attached.
	Width, Height float32
	Window        Window

	captured                       bool
	forward, backward, left, right bool
	deltaYaw, deltaPitch           float32
}

func NewCameraController() *CameraController {
	return &CameraController{
		WalkSpeed: DefaultWalkSpeed,
		LookSpeed: DefaultLookSpeed,
		captured:  true,
	}
}

func (c *CameraController) Captured() bool { return c.captured }

func (c *CameraController) SetCaptured(captured bool) {
	c.captured = captured
	if c.Window != nil {
		c.Window.SetCursorCaptured(captured)
	}
}

func (c *CameraController) center() (float32, float32) {
	w, h := c.Width, c.Height
	if c.Window != nil {
		w, h = c.Window.Size()
	}
	return w / 2, h / 2
}

func (c *CameraController) OnEvent(_ *scene.Scene, ctx scene.EventContext) {
	switch ev := ctx.Event.(type) {
	case input.KeyboardInput:
		switch ev.Key {
		case input.KeyW, input.KeyArrowUp:
			c.forward = ev.Pressed
		case input.KeyS, input.KeyArrowDown:
			c.backward = ev.Pressed
		case input.KeyA, input.KeyArrowLeft:
			c.left = ev.Pressed
		case input.KeyD, input.KeyArrowRight:
			c.right = ev.Pressed
		case input.KeyEscape:
			if ev.Pressed {
				c.SetCaptured(!c.captured)
			}
		}
	case input.CursorMoved:
		if !c.captured {
			return
		}
		cx, cy := c.center()
		c.deltaYaw = ev.X - cx
		c.deltaPitch = ev.Y - cy
		if c.Window != nil {
			c.Window.SetCursorPosition(cx, cy)
		}
	}
}

func (c *CameraController) OnUpdate(s *scene.Scene, ctx scene.UpdateContext) {
	ref, err := s.Transform(ctx.Entity)
	if err != nil {
		s.Logger().Warn("Camera controller without transform", log.Entity(ctx.Entity), log.Error(err))
		return
	}

	var walk mgl32.Vec3
	if c.forward {
		walk[2] -= c.WalkSpeed
	}
	if c.backward {
		walk[2] += c.WalkSpeed
	}
	if c.right {
		walk[0] += c.WalkSpeed
	}
	if c.left {
		walk[0] -= c.WalkSpeed
	}
	pitch := mgl32.Vec3{c.deltaPitch * c.LookSpeed, 0, 0}
	yaw := mgl32.Vec3{0, c.deltaYaw * c.LookSpeed, 0}

	err = ref.Write(func(t *scene.EntityTransform) {
		if walk != (mgl32.Vec3{}) {
			t.TranslateLocal(walk)
		}
		if pitch[0] != 0 {
			t.RotateEulerLocal(pitch)
		}
		if yaw[1] != 0 {
			t.RotateEulerGlobal(yaw)
		}
	})
	if err != nil {
		return
	}
	c.deltaYaw, c.deltaPitch = 0, 0
}
