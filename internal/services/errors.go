package services

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindPolicyViolation Kind = "policy_violation"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindInvalidRequest  Kind = "invalid_request"
	KindInternal        Kind = "internal"
)

// Error is the classified failure every service call returns. Message is safe
// to show to an end user for every kind; Err is kept for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err; anything that is not an *Error counts as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

const (
	msgConflict       = "An account with this email already exists."
	msgUnauthorized   = "Invalid email or password."
	msgLoginRequired  = "Email and password are required."
	msgChangeRequired = "Current and new password are required."
	msgWrongPassword  = "Current password is incorrect."
	msgInternal       = "Server error. Please try again."
	msgPasswordLength = "Password cannot exceed 72 bytes."
)

func policyViolation(msgs []string) *Error {
	return &Error{Kind: KindPolicyViolation, Message: strings.Join(msgs, " "), Details: msgs}
}
