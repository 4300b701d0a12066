// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package directory

import (
	"context"
	"sync"
)

// Store is the persistence interface for user accounts. Implementations
// must serialize mutation of a given account: AppendCredential and
// UpdateSignCount may be invoked concurrently by the transport layer and
// lost updates would corrupt credential bookkeeping.
type Store interface {
	// Create stores a new account. Returns ErrUserExists when the
	// identifier is already present.
	Create(ctx context.Context, account *UserAccount) error

	// Get retrieves an account by identifier. Returns ErrUserNotFound
	// when absent.
	Get(ctx context.Context, id string) (*UserAccount, error)

	// AppendCredential adds a credential to an existing account.
	AppendCredential(ctx context.Context, id string, cred Credential) error

	// UpdateSignCount overwrites the signature counter of an account
	// credential. Returns ErrCredentialNotFound when the credential is
	// not present on the account.
	UpdateSignCount(ctx context.Context, id string, credID []byte, signCount uint32) error
}

// MemoryStore is an in-memory implementation of Store. All mutation is
// serialized behind a single lock, which satisfies the per-account
// serialization requirement for a single-process deployment.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*UserAccount
}

// NewMemoryStore creates an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*UserAccount),
	}
}

// Create stores a new account.
func (s *MemoryStore) Create(ctx context.Context, account *UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return ErrUserExists
	}

	stored := &UserAccount{
		ID:          account.ID,
		Username:    account.Username,
		Credentials: cloneCredentials(account.Credentials),
	}
	s.accounts[account.ID] = stored
	return nil
}

// Get retrieves an account by identifier.
func (s *MemoryStore) Get(ctx context.Context, id string) (*UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	// Return a copy so callers cannot mutate stored state outside the lock.
	copied := &UserAccount{
		ID:          account.ID,
		Username:    account.Username,
		Credentials: cloneCredentials(account.Credentials),
	}
	return copied, nil
}

// AppendCredential adds a credential to an existing account.
func (s *MemoryStore) AppendCredential(ctx context.Context, id string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrUserNotFound
	}
	account.Credentials = append(account.Credentials, cloneCredential(cred))
	return nil
}

// UpdateSignCount overwrites the signature counter of an account credential.
func (s *MemoryStore) UpdateSignCount(ctx context.Context, id string, credID []byte, signCount uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrUserNotFound
	}
	for i := range account.Credentials {
		if string(account.Credentials[i].ID) == string(credID) {
			account.Credentials[i].SignCount = signCount
			return nil
		}
	}
	return ErrCredentialNotFound
}

// cloneCredential copies a credential including its byte fields, so the
// result never aliases the input's backing arrays.
func cloneCredential(cred Credential) Credential {
	return Credential{
		ID:         append([]byte(nil), cred.ID...),
		PublicKey:  append([]byte(nil), cred.PublicKey...),
		SignCount:  cred.SignCount,
		Transports: append([]string(nil), cred.Transports...),
	}
}

func cloneCredentials(creds []Credential) []Credential {
	if creds == nil {
		return nil
	}
	out := make([]Credential, len(creds))
	for i, cred := range creds {
		out[i] = cloneCredential(cred)
	}
	return out
}

// Count returns the number of accounts in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Clear removes all accounts from the store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*UserAccount)
}
