package scene

import (
	"errors"

	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/transform"
)

// PropagateTransforms recomputes the global transform of every dirty entity,
// parents first. A recomputed entity marks its children dirty, so each
// affected transform is recomputed exactly once per call.
func (s *Scene) PropagateTransforms() {
	globals := make(map[models.EntityID]transform.Transform)

	steps := s.walkOrder()
	defer walkPool.Put(steps)
	for _, step := range steps {
		ref, err := s.Transform(step.id)
		if err != nil {
			continue
		}

		parentGlobal := transform.Identity()
		if !step.root {
			pg, ok := globals[step.parent]
			if !ok {
				// parent was busy; the subtree waits for the next propagation
				continue
			}
			parentGlobal = pg
		}

		var recomputed bool
		err = ref.Write(func(t *EntityTransform) {
			if t.dirty {
				t.resolve(parentGlobal)
				recomputed = true
			}
			globals[step.id] = t.global
		})
		if errors.Is(err, ErrWouldBlock) {
			s.logger.Debug("Transform busy, propagation deferred", log.Entity(step.id))
			continue
		}

		if recomputed {
			s.markChildrenDirty(step.id)
		}
	}
}

func (s *Scene) markChildrenDirty(parent models.EntityID) {
	for _, child := range s.Children(parent) {
		ref, err := s.Transform(child)
		if err != nil {
			continue
		}
		_ = ref.Write(func(t *EntityTransform) { t.MarkDirty() })
	}
}
