package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/chickadee/internal/core/collision"
	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/transform"
)

type colliderState struct {
	entity  models.EntityID
	shape   collision.Shape
	dynamic bool
	global  transform.Transform
	ref     ComponentRef[*EntityTransform]
}

// CollisionPass separates overlapping colliders and returns the number of
// corrections applied. Every unordered pair is tested once in registration
// order. Static pairs and pairs on the same entity are skipped. Overlap is
// judged on the globals as of the last propagation; moved entities become
// dirty and are placed by the next propagation.
func (s *Scene) CollisionPass() int {
	matches := FindComponents[*Collider](s)
	states := make([]colliderState, 0, len(matches))
	for _, m := range matches {
		ref, err := s.Transform(m.Entity)
		if err != nil {
			continue
		}
		st := colliderState{entity: m.Entity, ref: ref}
		if err = m.Ref.Read(func(c *Collider) {
			st.shape = c.Shape
			st.dynamic = c.Dynamic
		}); err != nil {
			continue
		}
		if err = ref.Read(func(t *EntityTransform) { st.global = t.Global() }); err != nil {
			continue
		}
		if st.shape == nil {
			continue
		}
		states = append(states, st)
	}

	corrections := 0
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			a, b := states[i], states[j]
			if !a.dynamic && !b.dynamic {
				continue
			}
			if a.entity == b.entity {
				continue
			}
			v, ok := collision.Correction(a.shape, a.global, b.shape, b.global)
			if !ok {
				continue
			}
			corrections++
			switch {
			case a.dynamic && b.dynamic:
				s.push(a, v.Mul(0.5))
				s.push(b, v.Mul(-0.5))
			case a.dynamic:
				s.push(a, v)
			default:
				s.push(b, v.Mul(-1))
			}
		}
	}
	return corrections
}

func (s *Scene) push(c colliderState, v mgl32.Vec3) {
	if err := c.ref.Write(func(t *EntityTransform) { t.TranslateGlobal(v) }); err != nil {
		s.logger.Debug("Collider transform busy", log.Entity(c.entity), log.Error(err))
	}
}
