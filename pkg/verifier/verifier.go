// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package verifier is the cryptographic boundary of the ceremony core.
//
// The orchestrator hands it the raw authenticator response together with
// everything it expects the response to commit to (challenge, subject,
// stored credential); the verifier parses the binary structures, checks the
// commitments and the signature, and reports either a verified payload or a
// failure. Failures are plain errors matching ErrVerificationFailed so the
// caller can branch on the outcome without inspecting reasons.
package verifier

import (
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
)

// RegistrationExpectation is what a registration response must commit to.
type RegistrationExpectation struct {
	// Challenge is the raw challenge value issued at ceremony begin.
	Challenge []byte

	// UserID is the account identifier the ceremony is bound to.
	UserID []byte

	// Username is the subject's username, used for the user entity.
	Username string

	// RequireUserVerification enforces the UV flag when set.
	RequireUserVerification bool
}

// RegistrationResult is the verified payload of a registration response.
type RegistrationResult struct {
	// CredentialID is the identifier assigned by the authenticator.
	CredentialID []byte

	// PublicKey is the credential public key in COSE format.
	PublicKey []byte

	// SignCount is the authenticator's initial signature counter.
	SignCount uint32

	// Transports lists transport hints carried in the response, if any.
	Transports []string

	// AttestationType reports the attestation format conveyed.
	AttestationType string
}

// AssertionExpectation is what an authentication response must commit to.
type AssertionExpectation struct {
	// Challenge is the raw challenge value issued at ceremony begin.
	Challenge []byte

	// UserID and Username identify the subject.
	UserID   []byte
	Username string

	// CredentialID, PublicKey and SignCount describe the stored credential
	// the assertion must be valid against.
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32

	// RequireUserVerification enforces the UV flag when set.
	RequireUserVerification bool
}

// AuthenticationResult is the verified payload of an assertion.
type AuthenticationResult struct {
	// NewSignCount is the counter reported by the authenticator. The
	// caller overwrites its stored value with this one.
	NewSignCount uint32

	// CloneWarning is set when the reported counter did not advance past
	// the stored one, which may indicate a cloned authenticator. The
	// assertion itself still verified.
	CloneWarning bool
}

// Verifier validates authenticator responses against ceremony expectations.
type Verifier interface {
	// VerifyRegistration validates a raw attestation response. Any
	// parse or verification failure is reported as an error matching
	// ErrVerificationFailed.
	VerifyRegistration(response []byte, exp RegistrationExpectation) (*RegistrationResult, error)

	// VerifyAuthentication validates a raw assertion response against a
	// stored credential. Failure reporting as above.
	VerifyAuthentication(response []byte, exp AssertionExpectation) (*AuthenticationResult, error)
}

// AssertedCredentialID extracts the credential identifier referenced by a
// raw assertion response without verifying anything else about it. The
// orchestrator uses it to resolve the stored credential before invoking the
// verifier proper.
func AssertedCredentialID(response []byte) ([]byte, error) {
	var envelope struct {
		RawID protocol.URLEncodedBase64 `json:"rawId"`
	}
	if err := json.Unmarshal(response, &envelope); err != nil {
		return nil, failed("parse assertion response", err)
	}
	if len(envelope.RawID) == 0 {
		return nil, failed("parse assertion response", fmt.Errorf("missing credential id"))
	}
	return envelope.RawID, nil
}
