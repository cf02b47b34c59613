// Package apperr turns internal errors into the short notices shown to users.
package apperr

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// Class groups errors by how they are presented.
type Class int

const (
	ClassUnknown Class = iota
	ClassIdentity
	ClassInput
	ClassWriteRejected
	ClassUnavailable
	ClassMalformed
)

func (c Class) String() string {
	switch c {
	case ClassIdentity:
		return "identity"
	case ClassInput:
		return "input"
	case ClassWriteRejected:
		return "write_rejected"
	case ClassUnavailable:
		return "unavailable"
	case ClassMalformed:
		return "malformed"
	}
	return "unknown"
}

// ErrMalformed marks a response from an external service that could not be parsed.
var ErrMalformed = errors.New("malformed response")

const defaultMessage = "An error occurred. Please try again."

// Noticer is implemented by errors that carry their own user-facing text.
type Noticer interface {
	UserMessage() string
}

type notice struct {
	msg string
	err error
}

func (n *notice) Error() string {
	if n.err == nil {
		return n.msg
	}
	return n.msg + ": " + n.err.Error()
}
func (n *notice) Unwrap() error       { return n.err }
func (n *notice) UserMessage() string { return n.msg }

// WithNotice attaches user-facing text to err. A nil err yields an error with just msg.
func WithNotice(err error, msg string) error {
	return &notice{msg: msg, err: err}
}

var sentinelMessages = []struct {
	err error
	msg string
}{
	{models.ErrNotConnected, "You can only message users with an accepted connection."},
	{models.ErrEmptyContent, "Write something or attach a photo first."},
	{models.ErrInvalidTransition, "This request has already been handled."},
	{models.ErrNotPermitted, "You are not allowed to do that."},
	{models.ErrAlreadyExists, "That already exists."},
	{models.ErrNotFound, "That item no longer exists."},
}

// Classify reports which presentation class err belongs to.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknown
	}
	var n Noticer
	if errors.As(err, &n) {
		var id interface{ IdentityCode() string }
		if errors.As(err, &id) {
			return ClassIdentity
		}
		return ClassInput
	}
	if errors.Is(err, ErrMalformed) {
		return ClassMalformed
	}
	if validator.Fields(err) != nil {
		return ClassInput
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return ClassInput
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassUnavailable
	}
	switch grpcCode(err) {
	case codes.PermissionDenied, codes.Unauthenticated, codes.InvalidArgument,
		codes.ResourceExhausted, codes.FailedPrecondition:
		return ClassWriteRejected
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
		return ClassUnavailable
	}
	return ClassUnknown
}

// Message returns the notice to show for err. fallback names the failed
// operation ("Failed to create post. Please try again.") and is used for
// write rejections and unclassified failures.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if fallback == "" {
		fallback = defaultMessage
	}
	var n Noticer
	if errors.As(err, &n) {
		return n.UserMessage()
	}
	if fields := validator.Fields(err); fields != nil {
		return "Please check the form: " + validator.Describe(err) + "."
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}
	switch Classify(err) {
	case ClassMalformed:
		return "Received an unexpected response. Please try again."
	case ClassUnavailable:
		return "The service is unreachable. Please check your internet or try again."
	case ClassWriteRejected:
		if c := grpcCode(err); c == codes.PermissionDenied || c == codes.Unauthenticated {
			return "Permission denied. Please make sure you are logged in."
		}
	}
	return fallback
}

// grpcCode finds a gRPC status anywhere in err's chain.
func grpcCode(err error) codes.Code {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := status.FromError(e); ok && s.Code() != codes.Unknown {
			return s.Code()
		}
	}
	return codes.Unknown
}
