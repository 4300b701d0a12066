// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"encoding/base64"
	"time"

	"github.com/JohanEkblad/passwordless/pkg/directory"
)

// COSE algorithm identifiers offered to authenticators, in order of
// preference.
const (
	algES256 = -7
	algRS256 = -257
)

// RelyingPartyEntity identifies the Relying Party in creation options.
type RelyingPartyEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UserEntity identifies the subject in creation options. ID carries the
// account identifier as unpadded base64url.
type UserEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CredentialParameter advertises an acceptable credential algorithm.
type CredentialParameter struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

// CredentialDescriptor references a registered credential. ID is unpadded
// base64url.
type CredentialDescriptor struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	Transports []string `json:"transports,omitempty"`
}

// AuthenticatorSelection states the authenticator policy for registration.
type AuthenticatorSelection struct {
	UserVerification string `json:"userVerification,omitempty"`
}

// CreationOptions is the client-facing document for a registration
// ceremony, shaped per the WebAuthn PublicKeyCredentialCreationOptions
// dictionary.
type CreationOptions struct {
	Challenge          string                 `json:"challenge"`
	RP                 RelyingPartyEntity     `json:"rp"`
	User               UserEntity             `json:"user"`
	PubKeyCredParams   []CredentialParameter  `json:"pubKeyCredParams"`
	Timeout            int                    `json:"timeout,omitempty"`
	ExcludeCredentials []CredentialDescriptor `json:"excludeCredentials,omitempty"`
	Selection          AuthenticatorSelection `json:"authenticatorSelection"`
	Attestation        string                 `json:"attestation,omitempty"`
}

// RequestOptions is the client-facing document for an authentication
// ceremony, shaped per the WebAuthn PublicKeyCredentialRequestOptions
// dictionary.
type RequestOptions struct {
	Challenge        string                 `json:"challenge"`
	RPID             string                 `json:"rpId"`
	AllowCredentials []CredentialDescriptor `json:"allowCredentials"`
	Timeout          int                    `json:"timeout,omitempty"`
	UserVerification string                 `json:"userVerification,omitempty"`
}

// encodeBinary renders binary protocol values the way the WebAuthn JSON
// serialization does, as unpadded base64url.
func encodeBinary(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// timeoutMillis converts a ceremony timeout to the milliseconds value
// carried in options documents.
func timeoutMillis(d time.Duration) int {
	return int(d / time.Millisecond)
}

// descriptors converts stored credentials to wire descriptors, preserving
// registration order.
func descriptors(creds []directory.Credential) []CredentialDescriptor {
	out := make([]CredentialDescriptor, 0, len(creds))
	for _, cred := range creds {
		out = append(out, CredentialDescriptor{
			Type:       "public-key",
			ID:         encodeBinary(cred.ID),
			Transports: cred.Transports,
		})
	}
	return out
}
