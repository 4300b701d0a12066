// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"errors"
	"fmt"
)

// Sentinel errors for ceremony operations.
var (
	// ErrDuplicateUser is returned when registration is requested for a
	// username that already has an account.
	ErrDuplicateUser = errors.New("user already registered")

	// ErrUserNotFound is returned when a ceremony references an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrCredentialNotFound is returned when an assertion references a
	// credential the subject never registered.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrNoActiveCeremony is returned by a finish step when no matching
	// begin step issued a challenge, or the challenge was already consumed.
	ErrNoActiveCeremony = errors.New("no active ceremony")

	// ErrNotConfigured is returned when the service is not properly configured.
	ErrNotConfigured = errors.New("ceremony service not configured")
)

// CeremonyError wraps an error with the operation that failed.
type CeremonyError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

// Error returns the error message.
func (e *CeremonyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CeremonyError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches.
func (e *CeremonyError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new CeremonyError with the given operation and error.
func NewError(op string, err error) error {
	return &CeremonyError{
		Op:  op,
		Err: err,
	}
}

// WrapError wraps an error with an operation name if it's not nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(op, err)
}

// IsDuplicateUser returns true if the error indicates the user already exists.
func IsDuplicateUser(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}

// IsUserNotFound returns true if the error indicates a user was not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsCredentialNotFound returns true if the error indicates a credential was not found.
func IsCredentialNotFound(err error) bool {
	return errors.Is(err, ErrCredentialNotFound)
}

// IsNoActiveCeremony returns true if the error indicates no ceremony is in flight.
func IsNoActiveCeremony(err error) bool {
	return errors.Is(err, ErrNoActiveCeremony)
}
