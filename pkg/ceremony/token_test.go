// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohanEkblad/passwordless/pkg/directory"
)

func TestNewJWTIssuer(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := NewJWTIssuer("", "passwordless", time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret")
	})

	t.Run("defaults", func(t *testing.T) {
		issuer, err := NewJWTIssuer("secret", "", 0)
		require.NoError(t, err)
		assert.Equal(t, "passwordless", issuer.issuer)
		assert.Equal(t, 24*time.Hour, issuer.ExpiresIn())
	})
}

func TestJWTIssuer_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewJWTIssuer("secret", "passwordless", time.Hour)
	require.NoError(t, err)

	account := &directory.UserAccount{
		ID:       "0123456789abcdef0123456789abcdef",
		Username: "alice@example.com",
	}

	token, err := issuer.Issue(ctx, account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.UserID)
	assert.Equal(t, account.Username, session.Username)
}

func TestJWTIssuer_Verify_WrongSecret(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewJWTIssuer("secret", "passwordless", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(ctx, &directory.UserAccount{ID: "id", Username: "alice@example.com"})
	require.NoError(t, err)

	other, err := NewJWTIssuer("different", "passwordless", time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTIssuer_Verify_WrongIssuer(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewJWTIssuer("secret", "issuer-a", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(ctx, &directory.UserAccount{ID: "id", Username: "alice@example.com"})
	require.NoError(t, err)

	other, err := NewJWTIssuer("secret", "issuer-b", time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTIssuer_Verify_Expired(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewJWTIssuer("secret", "passwordless", -time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(ctx, &directory.UserAccount{ID: "id", Username: "alice@example.com"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestJWTIssuer_Verify_Garbage(t *testing.T) {
	issuer, err := NewJWTIssuer("secret", "passwordless", time.Hour)
	require.NoError(t, err)

	_, err = issuer.Verify("not-a-token")
	assert.Error(t, err)
}
