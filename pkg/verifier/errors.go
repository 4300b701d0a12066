// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package verifier

import (
	"errors"
	"fmt"
)

// ErrVerificationFailed is matched by every error this package reports for
// a response that could not be verified, regardless of the failing check.
var ErrVerificationFailed = errors.New("verification failed")

// Error wraps a verification failure with the operation that failed.
type Error struct {
	Op  string
	Err error
}

// Error returns the failure message.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches. All verifier errors match
// ErrVerificationFailed.
func (e *Error) Is(target error) bool {
	return target == ErrVerificationFailed || errors.Is(e.Err, target)
}

// failed wraps an error as a verification failure.
func failed(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// IsVerificationFailed returns true if the error is a verification failure.
func IsVerificationFailed(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}
