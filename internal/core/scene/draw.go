package scene

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/transform"
)

// DrawItem pairs a drawable component with its entity's global transform.
type DrawItem struct {
	Entity    models.EntityID
	Component models.ComponentID
	Ref       DynComponentRef
	Mesh      string
	Material  string
	Global    transform.Transform
}

// DrawList collects drawables in graph walk order. Components that are busy
// are left out of the list.
func (s *Scene) DrawList() []DrawItem {
	var items []DrawItem
	steps := s.walkOrder()
	defer walkPool.Put(steps)
	for _, step := range steps {
		global := s.globalOf(step.id)
		for _, id := range s.Components(step.id) {
			ref, ok := s.Component(id)
			if !ok {
				continue
			}
			_ = ref.Read(func(c Component) {
				d, ok := c.(Drawable)
				if !ok {
					return
				}
				items = append(items, DrawItem{
					Entity:    step.id,
					Component: id,
					Ref:       ref,
					Mesh:      d.Mesh(),
					Material:  d.Material(),
					Global:    global,
				})
			})
		}
	}
	return items
}

// Draw hands every drawable to fn, stopping at the first error.
func (s *Scene) Draw(fn func(DrawItem) error) error {
	for _, item := range s.DrawList() {
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) globalOf(entity models.EntityID) transform.Transform {
	ref, err := s.Transform(entity)
	if err != nil {
		return transform.Identity()
	}
	g, err := Get(ref, (*EntityTransform).Global)
	if err != nil {
		return transform.Identity()
	}
	return g
}

// Fingerprint hashes every global transform in walk order. Two scenes with the
// same structure and placement have the same fingerprint.
func (s *Scene) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [4]byte
	steps := s.walkOrder()
	defer walkPool.Put(steps)
	for _, step := range steps {
		m := s.globalOf(step.id).Matrix()
		for _, f := range m {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}
