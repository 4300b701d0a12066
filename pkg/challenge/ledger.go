// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package challenge issues and tracks single-use WebAuthn ceremony
// challenges. A challenge is bound to a ceremony kind and a subject
// identifier at issuance and is consumed exactly once at the matching
// finish step, whether or not verification ultimately succeeds.
package challenge

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
)

// Size is the number of random bytes in a challenge value.
const Size = 32

// Kind identifies the ceremony a challenge belongs to.
type Kind string

const (
	// KindRegistration marks a credential-creation ceremony.
	KindRegistration Kind = "registration"

	// KindAuthentication marks an assertion ceremony.
	KindAuthentication Kind = "authentication"
)

// ErrNoChallenge is returned by Consume when no challenge of the requested
// kind is outstanding, either because none was issued or because it was
// already consumed.
var ErrNoChallenge = errors.New("no challenge issued")

// Challenge is a pending ceremony challenge.
type Challenge struct {
	// Value is the high-entropy random value the authenticator must sign.
	Value []byte

	// Kind is the ceremony this challenge was issued for.
	Kind Kind

	// SubjectID is the account identifier the challenge is bound to.
	SubjectID string
}

// Ledger issues and consumes ceremony challenges.
//
// This implementation scope keeps a single outstanding slot per kind
// process-wide: issuing a new challenge silently invalidates any prior
// unconsumed challenge of that kind, which doubles as the expiry
// mechanism. Concurrent ceremonies of the same kind therefore race; an
// implementation for multi-session use should key challenges by a
// per-ceremony correlation identifier instead.
type Ledger interface {
	// Issue generates and stores a fresh challenge for the given kind and
	// subject, overwriting any outstanding challenge of that kind.
	Issue(ctx context.Context, kind Kind, subjectID string) (Challenge, error)

	// Consume returns the outstanding challenge of the given kind and
	// clears the slot. Returns ErrNoChallenge when the slot is empty.
	Consume(ctx context.Context, kind Kind) (Challenge, error)
}

// MemoryLedger is the in-process single-slot Ledger.
type MemoryLedger struct {
	mu    sync.Mutex
	slots map[Kind]*Challenge
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		slots: make(map[Kind]*Challenge),
	}
}

// Issue generates and stores a fresh challenge, overwriting any prior
// unconsumed challenge of the same kind.
func (l *MemoryLedger) Issue(ctx context.Context, kind Kind, subjectID string) (Challenge, error) {
	value := make([]byte, Size)
	if _, err := rand.Read(value); err != nil {
		return Challenge{}, fmt.Errorf("generate challenge: %w", err)
	}

	ch := Challenge{Value: value, Kind: kind, SubjectID: subjectID}

	l.mu.Lock()
	l.slots[kind] = &ch
	l.mu.Unlock()

	return ch, nil
}

// Consume returns and clears the outstanding challenge of the given kind.
func (l *MemoryLedger) Consume(ctx context.Context, kind Kind) (Challenge, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[kind]
	if !ok || ch == nil {
		return Challenge{}, ErrNoChallenge
	}
	delete(l.slots, kind)
	return *ch, nil
}
