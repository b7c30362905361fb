package setup

import (
	"fmt"

	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
	"github.com/zeusync/chickadee/internal/core/transform"
)

// Built maps slash-separated entity paths ("player/camera") to the entities
// created for them.
type Built map[string]models.EntityID

// Build adds the described entities under the scene root. Components are
// created through reg in file order, so dispatch follows the file. On error
// the scene keeps whatever was added before the failing entry.
func Build(s *scene.Scene, d *Description, reg Registry) (Built, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	built := make(Built)
	for i := range d.Entities {
		if err := build(s, reg, s.Root(), "", &d.Entities[i], built); err != nil {
			return built, err
		}
	}
	s.Logger().Info("Scene built", log.Int("entities", len(built)), log.Int("components", s.Len()))
	return built, nil
}

func build(s *scene.Scene, reg Registry, parent models.EntityID, prefix string, e *EntityDesc, built Built) error {
	path := e.Name
	if prefix != "" {
		path = prefix + "/" + e.Name
	}
	if _, dup := built[path]; dup {
		return fmt.Errorf("%w: duplicate entity path %q", ErrInvalidScene, path)
	}

	id, err := s.AddEntity(parent, e.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	built[path] = id

	if e.Transform != nil {
		ref, err := s.Transform(id)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		local := transform.FromEuler(vec3(e.Transform.Rotation))
		local.TranslateGlobal(vec3(e.Transform.Translation))
		if err = ref.Write(func(t *scene.EntityTransform) { t.SetLocal(local) }); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, cd := range e.Components {
		c, err := reg.New(cd.Type, Params(cd.Params))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if _, err = s.AddComponent(id, c); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	for i := range e.Children {
		if err := build(s, reg, id, path, &e.Children[i], built); err != nil {
			return err
		}
	}
	return nil
}
