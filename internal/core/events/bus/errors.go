package bus

import "errors"

var (
	ErrNilHandler = errors.New("nil event handler")
	ErrNilEvent   = errors.New("nil event")
)
