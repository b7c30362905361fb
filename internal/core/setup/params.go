package setup

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Params are the decoded YAML parameters of one component.
type Params map[string]any

func (p Params) Float(key string, def float32) (float32, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := number(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidParam, key, v)
	}
	return f, nil
}

func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidParam, key, v)
	}
	return b, nil
}

func (p Params) Text(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidParam, key, v)
	}
	return s, nil
}

func (p Params) Vec3(key string, def mgl32.Vec3) (mgl32.Vec3, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%w: %s must be a list of 3 numbers", ErrInvalidParam, key)
	}
	var out mgl32.Vec3
	for i, item := range list {
		f, ok := number(item)
		if !ok {
			return mgl32.Vec3{}, fmt.Errorf("%w: %s[%d] must be a number, got %T", ErrInvalidParam, key, i, item)
		}
		out[i] = f
	}
	return out, nil
}

func number(v any) (float32, bool) {
	switch n := v.(type) {
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	case uint64:
		return float32(n), true
	case float64:
		return float32(n), true
	case float32:
		return n, true
	default:
		return 0, false
	}
}
