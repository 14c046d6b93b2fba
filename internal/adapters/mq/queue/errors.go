package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrQueueFull   = errors.New("rating queue full")
	ErrQueueClosed = errors.New("rating queue closed")
)
