package models

import "errors"

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when creating a document whose ID is taken.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrInvalidTransition is returned when a connection leaves a terminal status.
	ErrInvalidTransition = errors.New("invalid connection status transition")
	// ErrNotPermitted is returned when the acting user may not perform the operation.
	ErrNotPermitted = errors.New("operation not permitted")
	// ErrNotConnected is returned when messaging requires an accepted connection.
	ErrNotConnected = errors.New("users are not connected")
	// ErrEmptyContent is returned when a post or message has neither text nor media.
	ErrEmptyContent = errors.New("content and media are both empty")
)
