package scene

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/pkg/generic"
)

// Scene notifications published on bus.TopicScene.
const (
	EventEntityCreated  = "scene.entity.created"
	EventComponentAdded = "scene.component.added"
)

// EntityCreated is the payload of EventEntityCreated.
type EntityCreated struct {
	Entity models.EntityID
	Parent models.EntityID
	Name   string
}

// ComponentAdded is the payload of EventComponentAdded.
type ComponentAdded struct {
	Entity    models.EntityID
	Component models.ComponentID
	TypeName  string
}

type entry struct {
	id     models.ComponentID
	entity models.EntityID
	ref    DynComponentRef
}

// Scene owns the entity graph and every component attached to it.
//
// Structural changes and lookups are safe from any goroutine, including from
// inside component callbacks. Lifecycle dispatch and propagation are expected
// to be driven by one goroutine at a time (see engine.Engine).
type Scene struct {
	mu sync.RWMutex

	graph      *EntityGraph
	components map[models.ComponentID]entry
	order      []models.ComponentID
	byType     map[TypeTag][]models.ComponentID
	transforms map[models.EntityID]ComponentRef[*EntityTransform]

	frame uint64

	logger log.Log
	bus    bus.EventBus
}

type Option func(*Scene)

func WithLogger(l log.Log) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventBus enables structure notifications on bus.TopicScene.
func WithEventBus(b bus.EventBus) Option {
	return func(s *Scene) { s.bus = b }
}

// New creates a scene holding only the root entity and its transform.
func New(opts ...Option) *Scene {
	s := &Scene{
		graph:      NewEntityGraph("root"),
		components: make(map[models.ComponentID]entry),
		byType:     make(map[TypeTag][]models.ComponentID),
		transforms: make(map[models.EntityID]ComponentRef[*EntityTransform]),
		logger:     log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.String("module", "scene"))

	s.mu.Lock()
	_, err := s.addTransformLocked(s.graph.Root(), ComponentRef[*EntityTransform]{})
	s.mu.Unlock()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Scene) Root() models.EntityID { return s.graph.Root() }

func (s *Scene) Logger() log.Log { return s.logger }

// AddEntity creates a child of parent with an identity transform. The entity
// and its transform become visible together.
func (s *Scene) AddEntity(parent models.EntityID, name string) (models.EntityID, error) {
	s.mu.Lock()
	id, err := s.graph.Add(parent, name)
	if err == nil {
		_, err = s.addTransformLocked(id, s.transforms[parent])
	}
	s.mu.Unlock()
	if err != nil {
		return models.EntityID{}, err
	}

	s.logger.Debug("Entity created", log.Entity(id), log.String("name", name))
	s.publish(EventEntityCreated, EntityCreated{Entity: id, Parent: parent, Name: name})
	return id, nil
}

// addTransformLocked attaches a fresh transform to entity, chained to the
// transform of its parent. s.mu must be held.
func (s *Scene) addTransformLocked(entity models.EntityID, parent ComponentRef[*EntityTransform]) (models.ComponentID, error) {
	t := NewEntityTransform()
	if parent.Valid() {
		t.up = parent.c.value.(*EntityTransform)
	}
	ref := NewDynComponentRef(t)
	id, err := s.insertLocked(entity, ref)
	if err != nil {
		return id, err
	}
	s.transforms[entity] = ComponentRef[*EntityTransform]{c: ref.c}
	return id, nil
}

// AddComponent attaches c to entity. Components added during a dispatch
// phase are first dispatched in the next phase.
func (s *Scene) AddComponent(entity models.EntityID, c Component) (models.ComponentID, error) {
	if isNil(c) {
		return models.ComponentID{}, ErrNilComponent
	}
	ref := NewDynComponentRef(c)
	id, err := s.insert(entity, ref)
	if err != nil {
		return id, err
	}

	s.logger.Debug("Component added",
		log.Entity(entity),
		log.Component(id),
		log.String("type", ref.TypeName()),
	)
	s.publish(EventComponentAdded, ComponentAdded{Entity: entity, Component: id, TypeName: ref.TypeName()})
	return id, nil
}

func (s *Scene) insert(entity models.EntityID, ref DynComponentRef) (models.ComponentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(entity, ref)
}

func (s *Scene) insertLocked(entity models.EntityID, ref DynComponentRef) (models.ComponentID, error) {
	id := models.NewComponentID()
	if err := s.graph.attach(entity, id); err != nil {
		return models.ComponentID{}, err
	}
	s.components[id] = entry{id: id, entity: entity, ref: ref}
	s.order = append(s.order, id)
	s.byType[ref.Tag()] = append(s.byType[ref.Tag()], id)
	return id, nil
}

// isNil also catches typed nil pointers, maps, slices and funcs hidden in
// the interface.
func isNil(c Component) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (s *Scene) publish(eventType string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishToTopic(bus.TopicScene, bus.NewEvent(eventType, "scene", data)); err != nil {
		s.logger.Warn("Scene notification failed", log.String("event", eventType), log.Error(err))
	}
}

// Component returns the type-erased handle of a component.
func (s *Scene) Component(id models.ComponentID) (DynComponentRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.components[id]
	return e.ref, ok
}

// EntityOf returns the entity a component is attached to.
func (s *Scene) EntityOf(id models.ComponentID) (models.EntityID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.components[id]
	return e.entity, ok
}

// Transform returns the transform every entity owns.
func (s *Scene) Transform(entity models.EntityID) (ComponentRef[*EntityTransform], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transforms[entity]
	if !ok {
		return ComponentRef[*EntityTransform]{}, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	return t, nil
}

func (s *Scene) Contains(entity models.EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Contains(entity)
}

func (s *Scene) Parent(entity models.EntityID) (models.EntityID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Parent(entity)
}

func (s *Scene) Children(entity models.EntityID) []models.EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Children(entity)
}

func (s *Scene) Components(entity models.EntityID) []models.ComponentID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Components(entity)
}

func (s *Scene) Name(entity models.EntityID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Name(entity)
}

// Entities lists every entity in walk order.
func (s *Scene) Entities() []models.EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EntityID, 0, s.graph.Len())
	s.graph.Walk(func(id, _ models.EntityID, _ bool) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Len is the number of components, entity transforms included.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Frame is the number of completed OnUpdate calls.
func (s *Scene) Frame() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Match is a typed lookup result.
type Match[C Component] struct {
	ID     models.ComponentID
	Entity models.EntityID
	Ref    ComponentRef[C]
}

// GetComponent returns the first component of type C attached to entity.
func GetComponent[C Component](s *Scene, entity models.EntityID) (ComponentRef[C], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.graph.nodes[entity]
	if !ok {
		return ComponentRef[C]{}, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	for _, id := range n.entity.Components {
		if ref, err := Downcast[C](s.components[id].ref); err == nil {
			return ref, nil
		}
	}
	return ComponentRef[C]{}, fmt.Errorf("%w: %s on entity %s", ErrComponentNotFound, TypeNameOf[C](), entity)
}

// FindFirstComponent returns the earliest registered component of type C.
func FindFirstComponent[C Component](s *Scene) (Match[C], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.byType[TagOf[C]()] {
		e := s.components[id]
		if ref, err := Downcast[C](e.ref); err == nil {
			return Match[C]{ID: id, Entity: e.entity, Ref: ref}, true
		}
	}
	return Match[C]{}, false
}

// FindComponents returns every component of type C in registration order.
func FindComponents[C Component](s *Scene) []Match[C] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byType[TagOf[C]()]
	out := make([]Match[C], 0, len(ids))
	for _, id := range ids {
		e := s.components[id]
		if ref, err := Downcast[C](e.ref); err == nil {
			out = append(out, Match[C]{ID: id, Entity: e.entity, Ref: ref})
		}
	}
	return out
}

// Dispatch and walk snapshots are taken several times per frame.
var (
	entryPool = generic.NewSlicePool[entry](64)
	walkPool  = generic.NewSlicePool[walkStep](64)
)

// snapshot copies the registration order. Release with entryPool.Put.
func (s *Scene) snapshot() []entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := entryPool.Get()
	for _, id := range s.order {
		out = append(out, s.components[id])
	}
	return out
}

type walkStep struct {
	id     models.EntityID
	parent models.EntityID
	root   bool
}

// walkOrder snapshots the graph in walk order. Release with walkPool.Put.
func (s *Scene) walkOrder() []walkStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := walkPool.Get()
	s.graph.Walk(func(id, parent models.EntityID, isRoot bool) bool {
		out = append(out, walkStep{id: id, parent: parent, root: isRoot})
		return true
	})
	return out
}
