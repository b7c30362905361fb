package scene

import (
	"errors"
	"fmt"
)

var (
	// Structural errors

	ErrEntityNotFound    = errors.New("entity not found")
	ErrParentNotFound    = errors.New("parent entity not found")
	ErrComponentNotFound = errors.New("component not found")
	ErrNilComponent      = errors.New("nil component")

	// Access errors

	ErrDowncast   = errors.New("component downcast failed")
	ErrWouldBlock = errors.New("component is held by the dispatch loop")

	// Fatal errors, raised through panics

	ErrComponentPoisoned = errors.New("component lock poisoned")
	ErrSceneCorrupted    = errors.New("scene corrupted")
)

// DowncastError is returned when a component handle is asked for a concrete
// type it does not hold. It matches ErrDowncast.
type DowncastError struct {
	Have string
	Want string
}

func (e *DowncastError) Error() string {
	return fmt.Sprintf("can't downcast component of type %s to %s", e.Have, e.Want)
}

func (e *DowncastError) Is(target error) bool {
	return target == ErrDowncast
}
