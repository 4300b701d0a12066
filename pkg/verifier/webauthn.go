// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package verifier

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// Params configures a CredentialVerifier.
type Params struct {
	// RPID is the Relying Party identifier, typically the site domain.
	RPID string

	// RPDisplayName is the human-readable Relying Party name.
	RPDisplayName string

	// RPOrigin is the web origin responses must have been produced for.
	RPOrigin string

	// CeremonyTimeout bounds the lifetime of the session data handed to
	// the underlying library. Defaults to one minute.
	CeremonyTimeout time.Duration
}

// CredentialVerifier verifies authenticator responses using the
// go-webauthn protocol implementation.
type CredentialVerifier struct {
	webauthn *webauthn.WebAuthn
	timeout  time.Duration
}

// compile-time interface check
var _ Verifier = (*CredentialVerifier)(nil)

// NewCredentialVerifier creates a verifier for the given Relying Party.
func NewCredentialVerifier(params Params) (*CredentialVerifier, error) {
	if params.RPOrigin == "" {
		return nil, fmt.Errorf("relying party origin is required")
	}

	timeout := params.CeremonyTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPID:          params.RPID,
		RPDisplayName: params.RPDisplayName,
		RPOrigins:     []string{params.RPOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}

	return &CredentialVerifier{
		webauthn: wa,
		timeout:  timeout,
	}, nil
}

// VerifyRegistration validates a raw attestation response against the
// expected challenge and subject.
func (v *CredentialVerifier) VerifyRegistration(response []byte, exp RegistrationExpectation) (*RegistrationResult, error) {
	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(response))
	if err != nil {
		return nil, failed("parse registration response", err)
	}

	session := v.session(exp.Challenge, exp.UserID, exp.RequireUserVerification)
	user := &ceremonySubject{id: exp.UserID, name: exp.Username}

	credential, err := v.webauthn.CreateCredential(user, session, parsed)
	if err != nil {
		return nil, failed("verify registration response", err)
	}

	transports := make([]string, 0, len(credential.Transport))
	for _, t := range credential.Transport {
		transports = append(transports, string(t))
	}

	return &RegistrationResult{
		CredentialID:    credential.ID,
		PublicKey:       credential.PublicKey,
		SignCount:       credential.Authenticator.SignCount,
		Transports:      transports,
		AttestationType: credential.AttestationType,
	}, nil
}

// VerifyAuthentication validates a raw assertion response against the
// expected challenge and the stored credential.
func (v *CredentialVerifier) VerifyAuthentication(response []byte, exp AssertionExpectation) (*AuthenticationResult, error) {
	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(response))
	if err != nil {
		return nil, failed("parse assertion response", err)
	}

	session := v.session(exp.Challenge, exp.UserID, exp.RequireUserVerification)
	session.AllowedCredentialIDs = [][]byte{exp.CredentialID}

	user := &ceremonySubject{
		id:   exp.UserID,
		name: exp.Username,
		credentials: []webauthn.Credential{{
			ID:        exp.CredentialID,
			PublicKey: exp.PublicKey,
			Authenticator: webauthn.Authenticator{
				SignCount: exp.SignCount,
			},
		}},
	}

	credential, err := v.webauthn.ValidateLogin(user, session, parsed)
	if err != nil {
		return nil, failed("verify assertion response", err)
	}

	return &AuthenticationResult{
		NewSignCount: credential.Authenticator.SignCount,
		CloneWarning: credential.Authenticator.CloneWarning,
	}, nil
}

// session builds the library session data that pins the challenge and
// subject a response must commit to.
func (v *CredentialVerifier) session(chal, userID []byte, requireUV bool) webauthn.SessionData {
	uv := protocol.VerificationPreferred
	if requireUV {
		uv = protocol.VerificationRequired
	}
	return webauthn.SessionData{
		Challenge:        base64.RawURLEncoding.EncodeToString(chal),
		UserID:           userID,
		Expires:          time.Now().Add(v.timeout),
		UserVerification: uv,
	}
}

// ceremonySubject adapts a ceremony's subject to the library user model.
type ceremonySubject struct {
	id          []byte
	name        string
	credentials []webauthn.Credential
}

func (s *ceremonySubject) WebAuthnID() []byte {
	return s.id
}

func (s *ceremonySubject) WebAuthnName() string {
	return s.name
}

func (s *ceremonySubject) WebAuthnDisplayName() string {
	return s.name
}

func (s *ceremonySubject) WebAuthnCredentials() []webauthn.Credential {
	return s.credentials
}

// WebAuthnIcon satisfies the deprecated icon accessor still present in
// the library's User interface; icons are intentionally unused.
func (s *ceremonySubject) WebAuthnIcon() string {
	return ""
}
