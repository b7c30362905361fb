package input

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidEvent = errors.New("invalid input event")

// WireEvent is the JSON form remote platforms send, e.g.
//
//	{"type":"key","pressed":true,"key":"W"}
//	{"type":"cursor","x":400,"y":300}
type WireEvent struct {
	Type    string  `json:"type"`
	Pressed bool    `json:"pressed,omitempty"`
	Key     string  `json:"key,omitempty"`
	X       float32 `json:"x,omitempty"`
	Y       float32 `json:"y,omitempty"`
}

// Event translates the wire form. Unrecognised types become Other so that
// newer clients never break older engines.
func (w WireEvent) Event() Event {
	switch w.Type {
	case "key", "keyboard":
		return KeyboardInput{Pressed: w.Pressed, Key: ParseKey(w.Key)}
	case "cursor", "mousemove":
		return CursorMoved{X: w.X, Y: w.Y}
	default:
		return Other{}
	}
}

// ToWire is the inverse of WireEvent.Event.
func ToWire(e Event) WireEvent {
	switch e := e.(type) {
	case KeyboardInput:
		return WireEvent{Type: "key", Pressed: e.Pressed, Key: e.Key.String()}
	case CursorMoved:
		return WireEvent{Type: "cursor", X: e.X, Y: e.Y}
	default:
		return WireEvent{Type: "other"}
	}
}

// Decode parses one JSON wire event.
func Decode(data []byte) (Event, error) {
	var w WireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if w.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	}
	return w.Event(), nil
}
