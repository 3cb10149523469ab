package models

import (
	"errors"
	"fmt"
)

// Error classes shared by the service, transport and client layers.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	// ErrUnavailable means the backend could not be reached or did not answer.
	// It says nothing about the caller's privileges.
	ErrUnavailable = errors.New("backend unavailable")
)

// Specific conditions. Each wraps its class so errors.Is matches both.
var (
	ErrNotOwner            = fmt.Errorf("%w: caller does not own the product", ErrNotAuthorized)
	ErrAlreadyClaimed      = fmt.Errorf("%w: app owner already claimed", ErrPreconditionFailed)
	ErrAlreadyBootstrapped = fmt.Errorf("%w: an admin already exists", ErrPreconditionFailed)
	ErrLastAdmin           = fmt.Errorf("%w: cannot remove the last admin", ErrPreconditionFailed)
	ErrInvalidIdentity     = fmt.Errorf("%w: invalid identity", ErrInvalidInput)
)

// ErrorResponse is the JSON error envelope returned by the backend.
type ErrorResponse struct {
	// Error is the class code, e.g. "precondition_failed".
	Error string `json:"error"`
	// Reason is the specific condition code, e.g. "last_admin". Empty for bare classes.
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

type errorCode struct {
	err    error
	class  string
	reason string
}

// Ordered from most to least specific.
var errorCodes = []errorCode{
	{ErrNotOwner, "not_authorized", "not_owner"},
	{ErrAlreadyClaimed, "precondition_failed", "already_claimed"},
	{ErrAlreadyBootstrapped, "precondition_failed", "already_bootstrapped"},
	{ErrLastAdmin, "precondition_failed", "last_admin"},
	{ErrInvalidIdentity, "invalid_input", "invalid_identity"},
	{ErrNotAuthenticated, "not_authenticated", ""},
	{ErrNotAuthorized, "not_authorized", ""},
	{ErrPreconditionFailed, "precondition_failed", ""},
	{ErrNotFound, "not_found", ""},
	{ErrInvalidInput, "invalid_input", ""},
	{ErrUnavailable, "unavailable", ""},
}

// Codes returns the class and reason codes for err. ok is false for errors
// outside the taxonomy.
func Codes(err error) (class, reason string, ok bool) {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.class, c.reason, true
		}
	}
	return "", "", false
}

// FromCodes rebuilds the sentinel error for the given codes. It returns nil
// when the class is unknown.
func FromCodes(class, reason string) error {
	for _, c := range errorCodes {
		if c.class == class && c.reason == reason {
			return c.err
		}
	}
	for _, c := range errorCodes {
		if c.class == class && c.reason == "" {
			return c.err
		}
	}
	return nil
}
