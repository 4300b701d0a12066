// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// accountIDLength is the number of hex characters kept from the identifier
// hash. 32 hex chars (128 bits) is ample for collision resistance here and
// keeps identifiers short enough to use as user handles.
const accountIDLength = 32

// Credential is a registered public-key credential as known to the
// Relying Party.
type Credential struct {
	// ID is the credential identifier assigned by the authenticator.
	// Immutable after creation.
	ID []byte `json:"id"`

	// PublicKey is the credential's public key in COSE format, owned
	// exclusively by this credential.
	PublicKey []byte `json:"public_key"`

	// SignCount is the authenticator's signature counter, overwritten on
	// each successful authentication. Expected to be non-decreasing; a
	// regression indicates a possible cloned authenticator.
	SignCount uint32 `json:"sign_count"`

	// Transports lists transport hints reported at registration.
	// Advisory only.
	Transports []string `json:"transports,omitempty"`
}

// UserAccount binds a stable identifier to a username and the credentials
// registered under it. Credentials keep insertion order, which is
// registration order.
type UserAccount struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Credentials []Credential `json:"credentials"`
}

// Credential returns the account credential with the given ID, or nil.
func (a *UserAccount) Credential(id []byte) *Credential {
	for i := range a.Credentials {
		if string(a.Credentials[i].ID) == string(id) {
			return &a.Credentials[i]
		}
	}
	return nil
}

// Directory resolves usernames to accounts and maintains their credentials.
type Directory struct {
	store  Store
	domain string
	salt   string
}

// New creates a Directory backed by the given store. The domain is appended
// to usernames that carry none; the salt feeds identifier derivation and
// must stay fixed for the lifetime of the stored data.
func New(store Store, domain, salt string) (*Directory, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("account domain is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("identifier salt is required")
	}
	return &Directory{store: store, domain: domain, salt: salt}, nil
}

// Normalize appends the account domain when the username contains no
// domain separator. Normalizing an already-normalized name is a no-op.
func (d *Directory) Normalize(username string) string {
	if strings.Contains(username, "@") {
		return username
	}
	return username + "@" + d.domain
}

// AccountID derives the stable identifier for a username: the first 32 hex
// characters of SHA-256(salt || normalized username). The derivation is
// deterministic and one-way.
func (d *Directory) AccountID(username string) string {
	h := sha256.New()
	h.Write([]byte(d.salt))
	h.Write([]byte(d.Normalize(username)))
	return hex.EncodeToString(h.Sum(nil))[:accountIDLength]
}

// Register creates the account for a username. Returns ErrUserExists when
// the derived identifier is already present; the existing account is left
// untouched.
func (d *Directory) Register(ctx context.Context, username string) (*UserAccount, error) {
	normalized := d.Normalize(username)
	account := &UserAccount{
		ID:       d.AccountID(normalized),
		Username: normalized,
	}
	if err := d.store.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ResolveOrCreate returns the account for a username, creating it when
// absent. Existing accounts are returned unchanged.
func (d *Directory) ResolveOrCreate(ctx context.Context, username string) (*UserAccount, error) {
	account, err := d.Lookup(ctx, username)
	if err == nil {
		return account, nil
	}
	if !IsUserNotFound(err) {
		return nil, err
	}
	account, err = d.Register(ctx, username)
	if IsUserExists(err) {
		// Lost the race to a concurrent creation; the winner's account
		// is the one we want.
		return d.Lookup(ctx, username)
	}
	return account, err
}

// Lookup resolves a username to its account. Returns ErrUserNotFound when
// absent; never creates.
func (d *Directory) Lookup(ctx context.Context, username string) (*UserAccount, error) {
	return d.store.Get(ctx, d.AccountID(username))
}

// Get retrieves an account by its identifier.
func (d *Directory) Get(ctx context.Context, id string) (*UserAccount, error) {
	return d.store.Get(ctx, id)
}

// AppendCredential adds a credential to an account. Duplicate credential
// IDs within an account are not rejected.
func (d *Directory) AppendCredential(ctx context.Context, id string, cred Credential) error {
	return d.store.AppendCredential(ctx, id, cred)
}

// UpdateSignCount overwrites the signature counter of an account
// credential with the value reported by the authenticator.
func (d *Directory) UpdateSignCount(ctx context.Context, id string, credID []byte, signCount uint32) error {
	return d.store.UpdateSignCount(ctx, id, credID, signCount)
}
