package persistence

import (
	"context"
	"errors"
	"fmt"
)

// Storage failure categories surfaced to callers as service-unavailable,
// distinct from business errors.
var (
	ErrStorageTimeout     = errors.New("storage operation timed out")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// MapError translates low-level driver failures into the storage error
// taxonomy. Context deadline expiry becomes ErrStorageTimeout; anything
// else is returned unchanged so business errors pass through.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
	}
	return err
}
