package generic

import "sync"

// Pool is a typed sync.Pool. Values are passed through reset before they
// are reused.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any { return generate() }
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// NewSlicePool pools slices with the given starting capacity. Returned
// slices have length zero.
func NewSlicePool[E any](capacity int) *Pool[[]E] {
	return NewPool(
		func() []E { return make([]E, 0, capacity) },
		func(s []E) []E {
			clear(s)
			return s[:0]
		},
	)
}
