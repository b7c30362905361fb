package scene

import (
	"fmt"
	"slices"

	"github.com/zeusync/chickadee/internal/core/models"
)

// Entity is the payload of a graph node.
type Entity struct {
	Name       string
	Components []models.ComponentID
}

type node struct {
	id       models.EntityID
	parent   models.EntityID
	hasPar   bool
	children []models.EntityID
	entity   Entity
}

// EntityGraph is the entity tree. The root is created with the graph and is
// never removed. EntityGraph is not safe for concurrent use; the Scene
// serializes access.
type EntityGraph struct {
	root  models.EntityID
	nodes map[models.EntityID]*node
}

func NewEntityGraph(rootName string) *EntityGraph {
	root := models.NewEntityID()
	return &EntityGraph{
		root: root,
		nodes: map[models.EntityID]*node{
			root: {id: root, entity: Entity{Name: rootName}},
		},
	}
}

func (g *EntityGraph) Root() models.EntityID { return g.root }

// Add creates a child of parent. On failure the graph is left untouched.
func (g *EntityGraph) Add(parent models.EntityID, name string) (models.EntityID, error) {
	p, ok := g.nodes[parent]
	if !ok {
		return models.EntityID{}, fmt.Errorf("%w: %s", ErrParentNotFound, parent)
	}
	id := models.NewEntityID()
	g.nodes[id] = &node{id: id, parent: parent, hasPar: true, entity: Entity{Name: name}}
	p.children = append(p.children, id)
	return id, nil
}

func (g *EntityGraph) Contains(id models.EntityID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Parent returns false for the root and for unknown entities.
func (g *EntityGraph) Parent(id models.EntityID) (models.EntityID, bool) {
	n, ok := g.nodes[id]
	if !ok || !n.hasPar {
		return models.EntityID{}, false
	}
	return n.parent, true
}

func (g *EntityGraph) Children(id models.EntityID) []models.EntityID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

func (g *EntityGraph) Name(id models.EntityID) (string, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return "", false
	}
	return n.entity.Name, true
}

func (g *EntityGraph) Components(id models.EntityID) []models.ComponentID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.entity.Components)
}

func (g *EntityGraph) attach(id models.EntityID, c models.ComponentID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}
	n.entity.Components = append(n.entity.Components, c)
	return nil
}

// Walk visits entities breadth first from the root, parents before children
// and siblings in insertion order. Returning false stops the walk.
func (g *EntityGraph) Walk(fn func(id models.EntityID, parent models.EntityID, isRoot bool) bool) {
	queue := []models.EntityID{g.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := g.nodes[id]
		if !fn(id, n.parent, !n.hasPar) {
			return
		}
		queue = append(queue, n.children...)
	}
}

func (g *EntityGraph) Len() int { return len(g.nodes) }
