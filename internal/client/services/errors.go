package services

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessNotGranted rejects reads and writes before the gate allowed
	// the room.
	ErrAccessNotGranted = errors.New("room access not granted")

	// ErrNotAuthor is the authorization violation raised when editing or
	// deleting someone else's message. It is checked before any remote call.
	ErrNotAuthor = errors.New("only the author can change this message")

	ErrMessageNotFound = errors.New("message not found")
	ErrMessageDeleted  = errors.New("message was deleted")

	// ErrNotConfirmed means the user declined a delete-for-everyone prompt.
	ErrNotConfirmed = errors.New("not confirmed")
)

// AccessError is a denied gate decision.
type AccessError struct {
	Reason string
}

func (e *AccessError) Error() string {
	return "access denied: " + e.Reason
}

// SubscriptionError is a failure of the live stream. Messages already
// received stay visible.
type SubscriptionError struct {
	RoomID string
	Err    error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription to %q: %v", e.RoomID, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// MutationError is a failed remote write. Writes are never retried.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
