// Package identity signs users in and up against an identity provider.
package identity

import (
	"context"
	"fmt"
)

// Account is the provider-side identity of a signed-in user.
type Account struct {
	UID   string
	Email string
}

// Provider authenticates email/password credentials.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Account, error)
	SignUp(ctx context.Context, email, password string) (Account, error)
}

// Code is a provider error code in the auth/<name> form.
type Code string

const (
	CodeEmailInUse        Code = "auth/email-already-in-use"
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeWeakPassword      Code = "auth/weak-password"
	CodeUserNotFound      Code = "auth/user-not-found"
	CodeWrongPassword     Code = "auth/wrong-password"
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeUserDisabled      Code = "auth/user-disabled"
	CodeTooManyRequests   Code = "auth/too-many-requests"
)

// MinPasswordLength is the shortest password the providers accept.
const MinPasswordLength = 6

// Error is a credential failure reported by the provider.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// IdentityCode returns the provider code.
func (e *Error) IdentityCode() string { return string(e.Code) }

// UserMessage returns the message shown on the sign-in form.
func (e *Error) UserMessage() string {
	switch e.Code {
	case CodeEmailInUse:
		return "This email is already registered. Please sign in instead."
	case CodeInvalidEmail:
		return "Invalid email address."
	case CodeWeakPassword:
		return "Password should be at least 6 characters."
	case CodeUserNotFound, CodeWrongPassword:
		return "Invalid email or password."
	case CodeInvalidCredential:
		return "Invalid credentials. Please check your email and password."
	case CodeUserDisabled:
		return "This account has been disabled. Please contact support."
	case CodeTooManyRequests:
		return "Too many attempts. Please wait a moment and try again."
	}
	return "An error occurred. Please try again."
}
