package scene

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// TypeTag is the runtime type tag recorded for every stored component: the
// xxhash of its fully qualified Go type name.
type TypeTag uint64

var tagCache sync.Map // reflect.Type -> TypeTag

// TagOf returns the tag components of concrete type C are stored under.
func TagOf[C any]() TypeTag {
	return tagOfType(reflect.TypeFor[C]())
}

// TypeNameOf returns the fully qualified name C is tagged with.
func TypeNameOf[C any]() string {
	return qualifiedName(reflect.TypeFor[C]())
}

func tagOfType(t reflect.Type) TypeTag {
	if tag, ok := tagCache.Load(t); ok {
		return tag.(TypeTag)
	}
	tag := TypeTag(xxhash.Sum64String(qualifiedName(t)))
	tagCache.Store(t, tag)
	return tag
}

func qualifiedName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		return "*" + qualifiedName(t.Elem())
	}
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// DispatchResult is the outcome of a lifecycle dispatch attempt.
type DispatchResult uint8

const (
	// DispatchOK means the callback ran.
	DispatchOK DispatchResult = iota
	// DispatchSkipped means the component was already held, typically by a
	// re-entrant dispatch from inside its own callback. Not an error.
	DispatchSkipped
	// DispatchPoisoned means an earlier callback or write panicked while
	// holding the component. The scene must be treated as corrupted.
	DispatchPoisoned
)

func (r DispatchResult) String() string {
	switch r {
	case DispatchOK:
		return "ok"
	case DispatchSkipped:
		return "skipped"
	case DispatchPoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// cell owns one component value and its reader/writer lock.
type cell struct {
	mu          sync.RWMutex
	value       Component
	tag         TypeTag
	typeName    string
	dispatching atomic.Bool
	poisoned    atomic.Bool
}

// DynComponentRef is a shared, type-erased handle to a stored component.
// Copies refer to the same component.
type DynComponentRef struct {
	c *cell
}

// NewDynComponentRef wraps component and records its runtime type tag.
func NewDynComponentRef(component Component) DynComponentRef {
	t := reflect.TypeOf(component)
	return DynComponentRef{c: &cell{
		value:    component,
		tag:      tagOfType(t),
		typeName: qualifiedName(t),
	}}
}

func (d DynComponentRef) Tag() TypeTag { return d.c.tag }

// TypeName is the fully qualified Go type of the stored component.
func (d DynComponentRef) TypeName() string { return d.c.typeName }

func (d DynComponentRef) Poisoned() bool { return d.c.poisoned.Load() }

// Is reports whether the handle stores a component of concrete type C.
func Is[C Component](d DynComponentRef) bool {
	if d.c == nil || d.c.tag != TagOf[C]() {
		return false
	}
	_, ok := d.c.value.(C)
	return ok
}

// Downcast recovers a typed handle. It succeeds only when the runtime tag
// matches C and the stored value really is a C.
func Downcast[C Component](d DynComponentRef) (ComponentRef[C], error) {
	if !Is[C](d) {
		have := "<nil>"
		if d.c != nil {
			have = d.c.typeName
		}
		return ComponentRef[C]{}, &DowncastError{Have: have, Want: qualifiedName(reflect.TypeFor[C]())}
	}
	return ComponentRef[C]{c: d.c}, nil
}

// Read runs fn with shared access to the erased component.
func (d DynComponentRef) Read(fn func(Component)) error {
	return d.c.read(func() { fn(d.c.value) })
}

func (d DynComponentRef) TryOnStart(s *Scene, ctx StartContext) DispatchResult {
	return d.c.dispatch(func(c Component) { c.OnStart(s, ctx) })
}

func (d DynComponentRef) TryOnUpdate(s *Scene, ctx UpdateContext) DispatchResult {
	return d.c.dispatch(func(c Component) { c.OnUpdate(s, ctx) })
}

func (d DynComponentRef) TryOnEvent(s *Scene, ctx EventContext) DispatchResult {
	return d.c.dispatch(func(c Component) { c.OnEvent(s, ctx) })
}

// ComponentRef is a typed handle produced by Downcast.
type ComponentRef[C Component] struct {
	c *cell
}

// Valid is false for the zero ComponentRef.
func (r ComponentRef[C]) Valid() bool { return r.c != nil }

// Erase returns the type-erased handle to the same component.
func (r ComponentRef[C]) Erase() DynComponentRef { return DynComponentRef{c: r.c} }

// Read runs fn with shared access. It returns ErrWouldBlock when the component
// is held by the dispatch loop (for example when called from the component's
// own callback) instead of deadlocking. The dispatch loop is not tied to a
// goroutine, so any caller gets ErrWouldBlock while a callback of this
// component runs. A lock held by another Read or Write blocks as usual.
func (r ComponentRef[C]) Read(fn func(C)) error {
	return r.c.read(func() { fn(r.c.value.(C)) })
}

// Write runs fn with exclusive access. A panic inside fn poisons the
// component.
func (r ComponentRef[C]) Write(fn func(C)) error {
	return r.c.write(func() { fn(r.c.value.(C)) })
}

// Get copies a value out of the component under a read lock.
func Get[C Component, T any](r ComponentRef[C], fn func(C) T) (T, error) {
	var out T
	err := r.Read(func(c C) { out = fn(c) })
	return out, err
}

// enter fails fast while a lifecycle callback holds the cell. Scene
// dispatch is driven by one goroutine per phase, so that caller is the
// callback itself or something it called.
func (c *cell) enter() error {
	if c.poisoned.Load() {
		panic(fmt.Errorf("%w: %s", ErrComponentPoisoned, c.typeName))
	}
	if c.dispatching.Load() {
		return fmt.Errorf("%w: %s", ErrWouldBlock, c.typeName)
	}
	return nil
}

func (c *cell) read(fn func()) error {
	if err := c.enter(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
	return nil
}

func (c *cell) write(fn func()) error {
	if err := c.enter(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.unlockPoisoning()
	fn()
	return nil
}

// unlockPoisoning must be deferred directly so recover sees the panic.
func (c *cell) unlockPoisoning() {
	if r := recover(); r != nil {
		c.poisoned.Store(true)
		c.mu.Unlock()
		panic(r)
	}
	c.mu.Unlock()
}

func (c *cell) dispatch(fn func(Component)) DispatchResult {
	if c.poisoned.Load() {
		return DispatchPoisoned
	}
	if !c.mu.TryLock() {
		return DispatchSkipped
	}
	c.dispatching.Store(true)
	defer func() {
		c.dispatching.Store(false)
		if r := recover(); r != nil {
			c.poisoned.Store(true)
			c.mu.Unlock()
			panic(r)
		}
		c.mu.Unlock()
	}()
	fn(c.value)
	return DispatchOK
}
