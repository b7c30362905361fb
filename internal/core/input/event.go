// Package input defines the engine-level input events threaded through
// component OnEvent callbacks. Platform layers translate their native window
// events into these values before handing them to the engine.
package input

import "fmt"

// Event is one of KeyboardInput, CursorMoved or Other.
type Event interface {
	// Kind is a stable routing key, also used as the event bus type.
	Kind() string
	event()
}

const (
	KindKeyboard = "input.keyboard"
	KindCursor   = "input.cursor"
	KindOther    = "input.other"
)

var (
	_ Event = KeyboardInput{}
	_ Event = CursorMoved{}
	_ Event = Other{}
)

// KeyboardInput is a key press or release.
type KeyboardInput struct {
	Pressed bool
	Key     KeyCode
}

// CursorMoved carries the cursor position in window pixels.
type CursorMoved struct {
	X, Y float32
}

// Other stands for every platform event the engine does not interpret.
type Other struct{}

func (KeyboardInput) Kind() string { return KindKeyboard }
func (CursorMoved) Kind() string   { return KindCursor }
func (Other) Kind() string         { return KindOther }

func (KeyboardInput) event() {}
func (CursorMoved) event()   {}
func (Other) event()         {}

func (e KeyboardInput) String() string {
	state := "released"
	if e.Pressed {
		state = "pressed"
	}
	return fmt.Sprintf("key %s %s", e.Key, state)
}

func (e CursorMoved) String() string {
	return fmt.Sprintf("cursor (%.1f, %.1f)", e.X, e.Y)
}

func (Other) String() string { return "other" }
