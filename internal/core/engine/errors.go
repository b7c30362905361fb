package engine

import "errors"

var (
	ErrAlreadyStarted = errors.New("engine already started")
	ErrClosed         = errors.New("engine is closed")
	ErrInputQueueFull = errors.New("input queue is full")
	ErrInvalidInput   = errors.New("invalid input event")
	ErrNilScene       = errors.New("nil scene")
)
