package model

import "errors"

var (
	// ErrUpstream marks a store, transport or question service failure that survived retries.
	ErrUpstream = errors.New("upstream failure")
	// ErrStateViolation marks a handler invoked for a phase it does not support.
	ErrStateViolation = errors.New("state violation")
	// ErrNotFound is returned by stores for unknown chats.
	ErrNotFound = errors.New("not found")
	// ErrInvalidUpdate marks a malformed inbound update.
	ErrInvalidUpdate = errors.New("invalid update")
)
