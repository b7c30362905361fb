package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyboard(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"key","pressed":true,"key":"KeyW"}`))
	require.NoError(t, err)
	assert.Equal(t, KeyboardInput{Pressed: true, Key: KeyW}, ev)
	assert.Equal(t, KindKeyboard, ev.Kind())
}

func TestDecodeCursor(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"cursor","x":12.5,"y":3}`))
	require.NoError(t, err)
	assert.Equal(t, CursorMoved{X: 12.5, Y: 3}, ev)
}

func TestDecodeUnknownTypeIsOther(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"resize"}`))
	require.NoError(t, err)
	assert.Equal(t, Other{}, ev)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = Decode([]byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestWireRoundTrip(t *testing.T) {
	for _, ev := range []Event{
		KeyboardInput{Pressed: false, Key: KeyArrowLeft},
		CursorMoved{X: 1, Y: 2},
		Other{},
	} {
		assert.Equal(t, ev, ToWire(ev).Event())
	}
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, KeyEscape, ParseKey("escape"))
	assert.Equal(t, KeyEscape, ParseKey("Esc"))
	assert.Equal(t, KeyArrowUp, ParseKey("ArrowUp"))
	assert.Equal(t, KeyUnknown, ParseKey("F13"))
	assert.Equal(t, "D", KeyD.String())
}
