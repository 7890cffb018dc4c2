package types

import "errors"

// Record store errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidKind = errors.New("invalid record kind")
)

// Storage lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrInvalidKey      = errors.New("invalid storage key")
)

// Input validation errors, raised by the form layer before the store is
// reached.
var (
	ErrNameRequired     = errors.New("meal name is required")
	ErrTypeRequired     = errors.New("workout type is required")
	ErrCategoryRequired = errors.New("meal category is required")
)
