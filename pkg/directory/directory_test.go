// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := New(NewMemoryStore(), "example.com", "test-salt")
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		store   Store
		domain  string
		salt    string
		wantErr string
	}{
		{
			name:    "nil store",
			domain:  "example.com",
			salt:    "s",
			wantErr: "store is required",
		},
		{
			name:    "empty domain",
			store:   NewMemoryStore(),
			salt:    "s",
			wantErr: "account domain is required",
		},
		{
			name:    "empty salt",
			store:   NewMemoryStore(),
			domain:  "example.com",
			wantErr: "identifier salt is required",
		},
		{
			name:   "valid",
			store:  NewMemoryStore(),
			domain: "example.com",
			salt:   "s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.store, tt.domain, tt.salt)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, d)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, d)
			}
		})
	}
}

func TestDirectory_Normalize(t *testing.T) {
	d := newTestDirectory(t)

	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"bare name", "alice", "alice@example.com"},
		{"already normalized", "alice@example.com", "alice@example.com"},
		{"foreign domain kept", "alice@other.org", "alice@other.org"},
		{"empty", "", "@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Normalize(tt.username)
			assert.Equal(t, tt.want, got)

			// Idempotent: normalizing the result changes nothing.
			assert.Equal(t, got, d.Normalize(got))
		})
	}
}

func TestDirectory_AccountID(t *testing.T) {
	d := newTestDirectory(t)

	id := d.AccountID("alice")
	assert.Len(t, id, 32)

	// Deterministic, and bare vs normalized forms agree.
	assert.Equal(t, id, d.AccountID("alice"))
	assert.Equal(t, id, d.AccountID("alice@example.com"))

	// Different usernames get different identifiers.
	assert.NotEqual(t, id, d.AccountID("bob"))

	// A different salt changes the derivation.
	other, err := New(NewMemoryStore(), "example.com", "other-salt")
	require.NoError(t, err)
	assert.NotEqual(t, id, other.AccountID("alice"))
}

func TestDirectory_Register(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	account, err := d.Register(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Username)
	assert.Equal(t, d.AccountID("alice"), account.ID)
	assert.Empty(t, account.Credentials)

	// First-write-wins: registering again fails and leaves the account alone.
	_, err = d.Register(ctx, "alice")
	require.Error(t, err)
	assert.True(t, IsUserExists(err))

	got, err := d.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestDirectory_ResolveOrCreate(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	created, err := d.ResolveOrCreate(ctx, "alice")
	require.NoError(t, err)

	// Second call resolves the same account instead of failing.
	resolved, err := d.ResolveOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, created.Username, resolved.Username)
}

func TestDirectory_Lookup_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	_, err := d.Lookup(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, IsUserNotFound(err))
}

func TestDirectory_AppendCredential(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	account, err := d.Register(ctx, "alice")
	require.NoError(t, err)

	first := Credential{ID: []byte{1}, PublicKey: []byte{10}, SignCount: 0}
	second := Credential{ID: []byte{2}, PublicKey: []byte{20}, SignCount: 5, Transports: []string{"usb"}}

	require.NoError(t, d.AppendCredential(ctx, account.ID, first))
	require.NoError(t, d.AppendCredential(ctx, account.ID, second))

	got, err := d.Get(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, got.Credentials, 2)

	// Insertion order is registration order.
	assert.Equal(t, []byte{1}, got.Credentials[0].ID)
	assert.Equal(t, []byte{2}, got.Credentials[1].ID)
	assert.Equal(t, []string{"usb"}, got.Credentials[1].Transports)
}

func TestDirectory_AppendCredential_DuplicateIDAllowed(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	account, err := d.Register(ctx, "alice")
	require.NoError(t, err)

	cred := Credential{ID: []byte{1}}
	require.NoError(t, d.AppendCredential(ctx, account.ID, cred))
	require.NoError(t, d.AppendCredential(ctx, account.ID, cred))

	got, err := d.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, got.Credentials, 2)
}

func TestDirectory_UpdateSignCount(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory(t)

	account, err := d.Register(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, d.AppendCredential(ctx, account.ID, Credential{ID: []byte{1}, SignCount: 3}))

	require.NoError(t, d.UpdateSignCount(ctx, account.ID, []byte{1}, 7))

	got, err := d.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), got.Credentials[0].SignCount)

	// Regressions are overwritten too; rejecting them is not this layer's job.
	require.NoError(t, d.UpdateSignCount(ctx, account.ID, []byte{1}, 2))
	got, err = d.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Credentials[0].SignCount)

	err = d.UpdateSignCount(ctx, account.ID, []byte{99}, 1)
	assert.ErrorIs(t, err, ErrCredentialNotFound)
}

func TestUserAccount_Credential(t *testing.T) {
	account := &UserAccount{
		Credentials: []Credential{
			{ID: []byte{1}, SignCount: 1},
			{ID: []byte{2}, SignCount: 2},
		},
	}

	cred := account.Credential([]byte{2})
	require.NotNil(t, cred)
	assert.Equal(t, uint32(2), cred.SignCount)

	assert.Nil(t, account.Credential([]byte{3}))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, &UserAccount{ID: "id", Username: "alice@example.com"}))
	require.NoError(t, store.AppendCredential(ctx, "id", Credential{ID: []byte{1}, SignCount: 1}))

	got, err := store.Get(ctx, "id")
	require.NoError(t, err)
	got.Credentials[0].SignCount = 99
	got.Username = "mallory@example.com"

	fresh, err := store.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), fresh.Credentials[0].SignCount)
	assert.Equal(t, "alice@example.com", fresh.Username)
}

func TestMemoryStore_GetIsolatesCredentialBytes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, &UserAccount{ID: "id"}))
	require.NoError(t, store.AppendCredential(ctx, "id", Credential{
		ID:         []byte{1, 2},
		PublicKey:  []byte{3, 4},
		Transports: []string{"usb"},
	}))

	got, err := store.Get(ctx, "id")
	require.NoError(t, err)

	// Scribbling over the returned byte fields must not reach the store.
	got.Credentials[0].ID[0] = 9
	got.Credentials[0].PublicKey[0] = 9
	got.Credentials[0].Transports[0] = "nfc"

	fresh, err := store.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, fresh.Credentials[0].ID)
	assert.Equal(t, []byte{3, 4}, fresh.Credentials[0].PublicKey)
	assert.Equal(t, []string{"usb"}, fresh.Credentials[0].Transports)
}

func TestMemoryStore_CountAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	assert.Equal(t, 0, store.Count())
	require.NoError(t, store.Create(ctx, &UserAccount{ID: "a"}))
	require.NoError(t, store.Create(ctx, &UserAccount{ID: "b"}))
	assert.Equal(t, 2, store.Count())

	store.Clear()
	assert.Equal(t, 0, store.Count())
	_, err := store.Get(ctx, "a")
	assert.True(t, IsUserNotFound(err))
}
