// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package directory

import "errors"

// Sentinel errors for directory operations.
var (
	// ErrUserNotFound is returned when no account exists for an identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when registering an identifier that is
	// already present. Registration is first-write-wins, not an upsert.
	ErrUserExists = errors.New("user already exists")

	// ErrCredentialNotFound is returned when a credential ID is not present
	// on the account being updated.
	ErrCredentialNotFound = errors.New("credential not found")
)

// IsUserNotFound returns true if the error indicates a missing account.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsUserExists returns true if the error indicates a duplicate account.
func IsUserExists(err error) bool {
	return errors.Is(err, ErrUserExists)
}
