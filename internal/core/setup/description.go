// Package setup builds scenes from YAML descriptions.
//
//	entities:
//	  - name: camera
//	    transform:
//	      translation: [0, 1, 2]
//	    components:
//	      - type: camera
//	        params: {fovy: 60}
//	      - type: camera_controller
//	    children: []
package setup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Description is the root of a scene file.
type Description struct {
	Entities []EntityDesc `yaml:"entities"`
}

type EntityDesc struct {
	Name       string          `yaml:"name"`
	Transform  *TransformDesc  `yaml:"transform,omitempty"`
	Components []ComponentDesc `yaml:"components,omitempty"`
	Children   []EntityDesc    `yaml:"children,omitempty"`
}

// TransformDesc is applied to the entity's local transform: rotation first
// (euler angles in radians), then translation in parent space.
type TransformDesc struct {
	Translation []float32 `yaml:"translation,omitempty"`
	Rotation    []float32 `yaml:"rotation,omitempty"`
}

type ComponentDesc struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Decode parses and validates a scene description.
func Decode(r io.Reader) (*Description, error) {
	var d Description
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads a scene description from disk.
func LoadFile(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

func (d *Description) Validate() error {
	for i := range d.Entities {
		if err := d.Entities[i].validate(fmt.Sprintf("entities[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *EntityDesc) validate(path string) error {
	if e.Name == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidScene, path)
	}
	if e.Transform != nil {
		if n := len(e.Transform.Translation); n != 0 && n != 3 {
			return fmt.Errorf("%w: %s: translation needs 3 values, got %d", ErrInvalidScene, path, n)
		}
		if n := len(e.Transform.Rotation); n != 0 && n != 3 {
			return fmt.Errorf("%w: %s: rotation needs 3 values, got %d", ErrInvalidScene, path, n)
		}
	}
	for i, c := range e.Components {
		if c.Type == "" {
			return fmt.Errorf("%w: %s.components[%d]: type is required", ErrInvalidScene, path, i)
		}
	}
	for i := range e.Children {
		if err := e.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func vec3(v []float32) mgl32.Vec3 {
	if len(v) != 3 {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}
