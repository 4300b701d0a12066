// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package challenge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_IssueAndConsume(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	issued, err := ledger.Issue(ctx, KindRegistration, "user-1")
	require.NoError(t, err)
	assert.Len(t, issued.Value, Size)
	assert.Equal(t, KindRegistration, issued.Kind)
	assert.Equal(t, "user-1", issued.SubjectID)

	consumed, err := ledger.Consume(ctx, KindRegistration)
	require.NoError(t, err)
	assert.Equal(t, issued.Value, consumed.Value)
	assert.Equal(t, issued.SubjectID, consumed.SubjectID)
}

func TestMemoryLedger_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	_, err := ledger.Issue(ctx, KindAuthentication, "user-1")
	require.NoError(t, err)

	_, err = ledger.Consume(ctx, KindAuthentication)
	require.NoError(t, err)

	// The slot is cleared whether or not the caller verifies successfully.
	_, err = ledger.Consume(ctx, KindAuthentication)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestMemoryLedger_ConsumeEmpty(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	_, err := ledger.Consume(ctx, KindRegistration)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestMemoryLedger_IssueOverwrites(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	first, err := ledger.Issue(ctx, KindRegistration, "user-1")
	require.NoError(t, err)

	second, err := ledger.Issue(ctx, KindRegistration, "user-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, second.Value)

	// The overwritten challenge is permanently unverifiable; only the
	// latest issuance can be consumed.
	consumed, err := ledger.Consume(ctx, KindRegistration)
	require.NoError(t, err)
	assert.Equal(t, second.Value, consumed.Value)
	assert.Equal(t, "user-2", consumed.SubjectID)
}

func TestMemoryLedger_KindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	reg, err := ledger.Issue(ctx, KindRegistration, "user-1")
	require.NoError(t, err)
	auth, err := ledger.Issue(ctx, KindAuthentication, "user-2")
	require.NoError(t, err)

	gotAuth, err := ledger.Consume(ctx, KindAuthentication)
	require.NoError(t, err)
	assert.Equal(t, auth.Value, gotAuth.Value)

	// Consuming one kind leaves the other outstanding.
	gotReg, err := ledger.Consume(ctx, KindRegistration)
	require.NoError(t, err)
	assert.Equal(t, reg.Value, gotReg.Value)
}

func TestMemoryLedger_ValuesAreUnique(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ch, err := ledger.Issue(ctx, KindRegistration, "user-1")
		require.NoError(t, err)
		require.False(t, seen[string(ch.Value)], "challenge value repeated")
		seen[string(ch.Value)] = true
	}
}
