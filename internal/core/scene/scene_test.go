package scene

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/models"
	"github.com/zeusync/chickadee/internal/core/transform"
)

const eps = 1e-5

func global(t *testing.T, s *Scene, e models.EntityID) transform.Transform {
	t.Helper()
	ref, err := s.Transform(e)
	require.NoError(t, err)
	g, err := Get(ref, (*EntityTransform).Global)
	require.NoError(t, err)
	return g
}

func translate(t *testing.T, s *Scene, e models.EntityID, v mgl32.Vec3) {
	t.Helper()
	ref, err := s.Transform(e)
	require.NoError(t, err)
	require.NoError(t, ref.Write(func(et *EntityTransform) { et.TranslateLocal(v) }))
}

func revision(t *testing.T, s *Scene, e models.EntityID) uint64 {
	t.Helper()
	ref, err := s.Transform(e)
	require.NoError(t, err)
	r, err := Get(ref, (*EntityTransform).Revision)
	require.NoError(t, err)
	return r
}

func chain(t *testing.T) (*Scene, models.EntityID, models.EntityID) {
	t.Helper()
	s := New()
	a, err := s.AddEntity(s.Root(), "a")
	require.NoError(t, err)
	b, err := s.AddEntity(a, "b")
	require.NoError(t, err)
	translate(t, s, a, mgl32.Vec3{1, 0, 0})
	translate(t, s, b, mgl32.Vec3{0, 1, 0})
	return s, a, b
}

func TestPropagationChain(t *testing.T) {
	s, _, b := chain(t)
	s.PropagateTransforms()

	got := global(t, s, b).Apply(mgl32.Vec3{})
	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{1, 1, 0}, got, eps), "got %v", got)
}

func TestPropagationRecomputesDirtyOnce(t *testing.T) {
	s, a, b := chain(t)
	s.PropagateTransforms()
	assert.Equal(t, uint64(1), revision(t, s, s.Root()))
	assert.Equal(t, uint64(1), revision(t, s, a))
	assert.Equal(t, uint64(1), revision(t, s, b))

	// clean scene: nothing is recomputed
	s.PropagateTransforms()
	assert.Equal(t, uint64(1), revision(t, s, b))

	translate(t, s, a, mgl32.Vec3{0, 0, 2})

	// b keeps its cached global until the next propagation
	ref, _ := s.Transform(b)
	dirty, err := Get(ref, (*EntityTransform).Dirty)
	require.NoError(t, err)
	assert.False(t, dirty, "children are dirtied by propagation")
	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{1, 1, 0}, global(t, s, b).Translation(), eps))

	s.PropagateTransforms()
	assert.Equal(t, uint64(1), revision(t, s, s.Root()))
	assert.Equal(t, uint64(2), revision(t, s, a))
	assert.Equal(t, uint64(2), revision(t, s, b))
	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{1, 1, 2}, global(t, s, b).Translation(), eps))

	s.PropagateTransforms()
	assert.Equal(t, uint64(2), revision(t, s, b))
}

func TestTranslateGlobalUnderRotatedParent(t *testing.T) {
	s := New()
	a, _ := s.AddEntity(s.Root(), "a")
	b, _ := s.AddEntity(a, "b")

	aRef, _ := s.Transform(a)
	require.NoError(t, aRef.Write(func(et *EntityTransform) {
		et.SetLocal(transform.FromAngleZ(mgl32.DegToRad(90)))
	}))
	s.PropagateTransforms()

	bRef, _ := s.Transform(b)
	require.NoError(t, bRef.Write(func(et *EntityTransform) { et.TranslateGlobal(mgl32.Vec3{1, 0, 0}) }))
	s.PropagateTransforms()

	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{1, 0, 0}, global(t, s, b).Translation(), 1e-5),
		"got %v", global(t, s, b).Translation())
}

// nudger moves its entity along world +x when the scene starts.
type nudger struct{ Base }

func (nudger) OnStart(s *Scene, ctx StartContext) {
	ref, err := s.Transform(ctx.Entity)
	if err != nil {
		panic(err)
	}
	if err = ref.Write(func(et *EntityTransform) { et.TranslateGlobal(mgl32.Vec3{1, 0, 0}) }); err != nil {
		panic(err)
	}
}

func TestTranslateGlobalBeforeFirstPropagation(t *testing.T) {
	s := New()
	a, _ := s.AddEntity(s.Root(), "a")
	b, _ := s.AddEntity(a, "b")
	c, _ := s.AddEntity(b, "c")

	aRef, _ := s.Transform(a)
	require.NoError(t, aRef.Write(func(et *EntityTransform) {
		et.SetLocal(transform.FromAngleZ(mgl32.DegToRad(90)))
	}))
	bRef, _ := s.Transform(b)
	require.NoError(t, bRef.Write(func(et *EntityTransform) {
		et.RotateEulerLocal(mgl32.Vec3{mgl32.DegToRad(90), 0, 0})
	}))
	_, err := s.AddComponent(b, nudger{})
	require.NoError(t, err)
	_, err = s.AddComponent(c, nudger{})
	require.NoError(t, err)

	s.OnStart()
	s.PropagateTransforms()

	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{1, 0, 0}, global(t, s, b).Translation(), 1e-5),
		"got %v", global(t, s, b).Translation())
	// c moved by world +x relative to b, which also moved by world +x
	assert.True(t, transform.VecApproxEqual(mgl32.Vec3{2, 0, 0}, global(t, s, c).Translation(), 1e-5),
		"got %v", global(t, s, c).Translation())
}

func TestAddEntityUnknownParent(t *testing.T) {
	s := New()
	before := s.Entities()
	components := s.Len()

	_, err := s.AddEntity(models.NewEntityID(), "orphan")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Equal(t, before, s.Entities())
	assert.Equal(t, components, s.Len())
}

func TestAddComponentUnknownEntity(t *testing.T) {
	s := New()
	_, err := s.AddComponent(models.NewEntityID(), &camera{})
	assert.ErrorIs(t, err, ErrEntityNotFound)

	_, err = s.AddComponent(s.Root(), nil)
	assert.ErrorIs(t, err, ErrNilComponent)
}

func TestAddComponentRejectsTypedNil(t *testing.T) {
	s := New()
	components := s.Len()

	var cam *camera
	_, err := s.AddComponent(s.Root(), cam)
	assert.ErrorIs(t, err, ErrNilComponent)
	assert.Equal(t, components, s.Len())
	assert.NotPanics(t, func() { s.OnStart() })
}

func TestAddEntityPublishesTransformAtomically(t *testing.T) {
	s := New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		parent := s.Root()
		for i := 0; i < 500; i++ {
			id, err := s.AddEntity(parent, fmt.Sprintf("e%d", i))
			if err != nil {
				return
			}
			parent = id
		}
	}()

	for {
		for _, e := range s.Entities() {
			_, err := s.Transform(e)
			require.NoError(t, err)
		}
		select {
		case <-done:
			assert.Equal(t, 501, len(s.Entities()))
			return
		default:
		}
	}
}

func TestEveryEntityOwnsATransform(t *testing.T) {
	s := New()
	e, err := s.AddEntity(s.Root(), "e")
	require.NoError(t, err)

	ids := s.Components(e)
	require.Len(t, ids, 1)
	ref, ok := s.Component(ids[0])
	require.True(t, ok)
	assert.True(t, Is[*EntityTransform](ref))

	owner, ok := s.EntityOf(ids[0])
	require.True(t, ok)
	assert.Equal(t, e, owner)

	parent, ok := s.Parent(e)
	require.True(t, ok)
	assert.Equal(t, s.Root(), parent)
	_, ok = s.Parent(s.Root())
	assert.False(t, ok)
	assert.Equal(t, []models.EntityID{e}, s.Children(s.Root()))

	name, ok := s.Name(e)
	require.True(t, ok)
	assert.Equal(t, "e", name)
}

func TestComponentLookups(t *testing.T) {
	s := New()
	e1, _ := s.AddEntity(s.Root(), "e1")
	e2, _ := s.AddEntity(s.Root(), "e2")

	_, err := GetComponent[*camera](s, e1)
	assert.ErrorIs(t, err, ErrComponentNotFound)
	_, err = GetComponent[*camera](s, models.NewEntityID())
	assert.ErrorIs(t, err, ErrEntityNotFound)

	_, ok := FindFirstComponent[*camera](s)
	assert.False(t, ok)

	id2, err := s.AddComponent(e2, &camera{Fovy: 2})
	require.NoError(t, err)
	id1, err := s.AddComponent(e1, &camera{Fovy: 1})
	require.NoError(t, err)
	_, err = s.AddComponent(e1, &cameraController{})
	require.NoError(t, err)

	first, ok := FindFirstComponent[*camera](s)
	require.True(t, ok)
	assert.Equal(t, id2, first.ID)
	assert.Equal(t, e2, first.Entity)

	all := FindComponents[*camera](s)
	require.Len(t, all, 2)
	assert.Equal(t, []models.ComponentID{id2, id1}, []models.ComponentID{all[0].ID, all[1].ID})

	ref, err := GetComponent[*camera](s, e1)
	require.NoError(t, err)
	fovy, err := Get(ref, func(c *camera) float32 { return c.Fovy })
	require.NoError(t, err)
	assert.Equal(t, float32(1), fovy)
}

// recorder appends "<name>:<phase>" to a shared log.
type recorder struct {
	Base
	name string
	log  *[]string
}

func (r *recorder) OnStart(*Scene, StartContext)   { *r.log = append(*r.log, r.name+":start") }
func (r *recorder) OnUpdate(*Scene, UpdateContext) { *r.log = append(*r.log, r.name+":update") }
func (r *recorder) OnEvent(_ *Scene, ctx EventContext) {
	*r.log = append(*r.log, fmt.Sprintf("%s:%s", r.name, ctx.Event.Kind()))
}

func TestDispatchInRegistrationOrder(t *testing.T) {
	s := New()
	var calls []string
	e, _ := s.AddEntity(s.Root(), "e")
	_, _ = s.AddComponent(e, &recorder{name: "b", log: &calls})
	_, _ = s.AddComponent(s.Root(), &recorder{name: "a", log: &calls})
	_, _ = s.AddComponent(e, &recorder{name: "c", log: &calls})

	s.OnStart()
	s.OnUpdate(time.Millisecond)
	s.OnEvent(input.Other{})
	s.OnEvent(nil)

	assert.Equal(t, []string{
		"b:start", "a:start", "c:start",
		"b:update", "a:update", "c:update",
		"b:input.other", "a:input.other", "c:input.other",
	}, calls)
	assert.Equal(t, uint64(1), s.Frame())
}

// spawner adds a recorder to its entity on every update.
type spawner struct {
	Base
	log *[]string
}

func (sp *spawner) OnUpdate(s *Scene, ctx UpdateContext) {
	_, _ = s.AddComponent(ctx.Entity, &recorder{name: fmt.Sprintf("spawned%d", ctx.Frame), log: sp.log})
}

func TestDispatchUsesSnapshot(t *testing.T) {
	s := New()
	var calls []string
	_, _ = s.AddComponent(s.Root(), &spawner{log: &calls})

	s.OnUpdate(time.Millisecond)
	assert.Empty(t, calls)

	s.OnUpdate(time.Millisecond)
	assert.Equal(t, []string{"spawned1:update"}, calls)
}

// broadcaster re-enters the scene during its own update.
type broadcaster struct {
	Base
	events int
}

func (b *broadcaster) OnUpdate(s *Scene, _ UpdateContext) { s.OnEvent(input.Other{}) }
func (b *broadcaster) OnEvent(*Scene, EventContext)       { b.events++ }

func TestReentrantDispatchSkipsCaller(t *testing.T) {
	s := New()
	var calls []string
	b := &broadcaster{}
	_, _ = s.AddComponent(s.Root(), b)
	_, _ = s.AddComponent(s.Root(), &recorder{name: "r", log: &calls})

	require.NotPanics(t, func() { s.OnUpdate(time.Millisecond) })
	assert.Equal(t, 0, b.events)
	assert.Equal(t, []string{"r:input.other", "r:update"}, calls)
}

type updatePanicker struct{ Base }

func (updatePanicker) OnUpdate(*Scene, UpdateContext) { panic("update failed") }

func TestPoisonedComponentCorruptsScene(t *testing.T) {
	s := New()
	_, _ = s.AddComponent(s.Root(), &updatePanicker{})

	assert.Panics(t, func() { s.OnUpdate(time.Millisecond) })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrSceneCorrupted))
	}()
	s.OnStart()
}

func TestBusNotifications(t *testing.T) {
	b := bus.New()
	var types []string
	_, err := b.SubscribeTopic(bus.TopicScene, bus.Wildcard, func(ev bus.Event) error {
		types = append(types, ev.Type())
		return nil
	})
	require.NoError(t, err)

	s := New(WithEventBus(b))
	e, _ := s.AddEntity(s.Root(), "e")
	_, _ = s.AddComponent(e, &camera{})

	assert.Equal(t, []string{EventEntityCreated, EventComponentAdded}, types)
}
