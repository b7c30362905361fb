package components

import "github.com/zeusync/chickadee/internal/core/scene"

var _ scene.Drawable = (*Model)(nil)

// Model draws a mesh with a material at its entity's global transform. Both
// are asset keys resolved by the renderer.
type Model struct {
	scene.Base

	MeshKey     string
	MaterialKey string
}

func NewModel(mesh, material string) *Model {
	return &Model{MeshKey: mesh, MaterialKey: material}
}

func (m *Model) Mesh() string     { return m.MeshKey }
func (m *Model) Material() string { return m.MaterialKey }
