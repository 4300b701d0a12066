// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package directory maps stable user identifiers to usernames and their
// registered WebAuthn credentials.
//
// Identifiers are derived deterministically from the normalized username
// (a one-way salted hash), so repeated lookups by username are idempotent
// and no separate username index is required. Accounts are created on first
// registration and never deleted; the only mutation after creation is
// appending a credential or overwriting a credential's signature counter.
//
// Persistence is pluggable through the Store interface. The in-memory
// implementation is suitable for a single-process deployment; durable
// engines implement Store externally.
package directory
