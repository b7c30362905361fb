package setup

import "errors"

var (
	ErrUnknownComponent = errors.New("unknown component type")
	ErrInvalidScene     = errors.New("invalid scene description")
	ErrInvalidParam     = errors.New("invalid component parameter")
)
