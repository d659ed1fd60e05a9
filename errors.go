package coro

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted is returned by Create when every slot is live.
	ErrPoolExhausted = errors.New("coro: pool exhausted")

	// ErrInvalidID is returned when an ID is out of range or does not denote
	// a live coroutine.
	ErrInvalidID = errors.New("coro: invalid coroutine id")

	// ErrAllocationFailed is returned by Stackful.Create when no stack could
	// be obtained for a new coroutine.
	ErrAllocationFailed = errors.New("coro: stack allocation failed")

	// ErrRunning is returned by Resume when the coroutine is already running,
	// i.e. when a coroutine tries to resume itself.
	ErrRunning = errors.New("coro: coroutine is running")
)

func invalidID(id ID) error {
	return fmt.Errorf("%w: %d", ErrInvalidID, id)
}

func exhausted(capacity int) error {
	return fmt.Errorf("%w (capacity %d)", ErrPoolExhausted, capacity)
}

func wrapAllocationFailed(err error) error {
	if errors.Is(err, ErrAllocationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
}
