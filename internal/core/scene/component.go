package scene

import (
	"time"

	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/models"
)

// Component is a behaviour or data unit attached to an entity. The scene calls
// the lifecycle methods with exclusive access to the component; the component
// may freely use the scene, including reading and writing other components.
//
// Components should be pointer types so that writes through a ComponentRef
// are visible to later readers.
type Component interface {
	OnStart(s *Scene, ctx StartContext)
	OnUpdate(s *Scene, ctx UpdateContext)
	OnEvent(s *Scene, ctx EventContext)
}

// StartContext identifies the caller during OnStart.
type StartContext struct {
	Entity    models.EntityID
	Component models.ComponentID
}

// UpdateContext identifies the caller during OnUpdate.
type UpdateContext struct {
	Entity    models.EntityID
	Component models.ComponentID
	// DeltaTime is the time elapsed since the previous update.
	DeltaTime time.Duration
	Frame     uint64
}

// EventContext identifies the caller during OnEvent.
type EventContext struct {
	Entity    models.EntityID
	Component models.ComponentID
	Event     input.Event
}

// Base provides no-op lifecycle methods for embedding.
type Base struct{}

func (Base) OnStart(*Scene, StartContext)   {}
func (Base) OnUpdate(*Scene, UpdateContext) {}
func (Base) OnEvent(*Scene, EventContext)   {}

// Drawable is implemented by components the renderer draws at their entity's
// global transform.
type Drawable interface {
	Component
	Mesh() string
	Material() string
}
