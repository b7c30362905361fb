package scene

import (
	"fmt"
	"time"

	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/observability/log"
)

// OnStart runs every component's OnStart in registration order.
func (s *Scene) OnStart() {
	s.dispatch("start", func(e entry) DispatchResult {
		return e.ref.TryOnStart(s, StartContext{Entity: e.entity, Component: e.id})
	})
}

// OnUpdate advances one frame: transforms are propagated, colliders are
// separated, transforms are propagated again and then every component's
// OnUpdate runs in registration order.
func (s *Scene) OnUpdate(dt time.Duration) {
	s.mu.Lock()
	s.frame++
	frame := s.frame
	s.mu.Unlock()

	s.PropagateTransforms()
	if n := s.CollisionPass(); n > 0 {
		s.logger.Debug("Colliders separated", log.Frame(frame), log.Int("corrections", n))
	}
	s.PropagateTransforms()

	s.dispatch("update", func(e entry) DispatchResult {
		return e.ref.TryOnUpdate(s, UpdateContext{
			Entity:    e.entity,
			Component: e.id,
			DeltaTime: dt,
			Frame:     frame,
		})
	})
}

// OnEvent delivers ev to every component in registration order.
func (s *Scene) OnEvent(ev input.Event) {
	if ev == nil {
		return
	}
	s.dispatch("event", func(e entry) DispatchResult {
		return e.ref.TryOnEvent(s, EventContext{Entity: e.entity, Component: e.id, Event: ev})
	})
}

// dispatch iterates over a snapshot taken before the first callback, so
// components added by callbacks wait for the next phase.
func (s *Scene) dispatch(phase string, call func(entry) DispatchResult) {
	entries := s.snapshot()
	defer entryPool.Put(entries)
	for _, e := range entries {
		switch call(e) {
		case DispatchOK:
		case DispatchSkipped:
			s.logger.Debug("Component busy, skipped",
				log.String("phase", phase),
				log.Entity(e.entity),
				log.Component(e.id),
			)
		case DispatchPoisoned:
			s.logger.Error("Component poisoned",
				log.String("phase", phase),
				log.Entity(e.entity),
				log.Component(e.id),
				log.String("type", e.ref.TypeName()),
			)
			panic(fmt.Errorf("%w: component %s of type %s is poisoned", ErrSceneCorrupted, e.id, e.ref.TypeName()))
		}
	}
}
