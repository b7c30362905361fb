package input

import "strings"

// KeyCode is a physical key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeySpace
	KeyShift
	KeyEscape
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

var keyNames = map[KeyCode]string{
	KeyUnknown:    "Unknown",
	KeyW:          "W",
	KeyA:          "A",
	KeyS:          "S",
	KeyD:          "D",
	KeyQ:          "Q",
	KeyE:          "E",
	KeySpace:      "Space",
	KeyShift:      "Shift",
	KeyEscape:     "Escape",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
}

var keysByName = func() map[string]KeyCode {
	m := make(map[string]KeyCode, len(keyNames))
	for k, n := range keyNames {
		m[strings.ToLower(n)] = k
	}
	// browser KeyboardEvent.code aliases
	m["keyw"], m["keya"], m["keys"], m["keyd"] = KeyW, KeyA, KeyS, KeyD
	m["keyq"], m["keye"] = KeyQ, KeyE
	m["esc"] = KeyEscape
	m["shiftleft"], m["shiftright"] = KeyShift, KeyShift
	return m
}()

func (k KeyCode) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "Unknown"
}

// ParseKey resolves a key name case-insensitively; unknown names map to
// KeyUnknown.
func ParseKey(name string) KeyCode {
	if k, ok := keysByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return KeyUnknown
}
