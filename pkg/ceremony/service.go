// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JohanEkblad/passwordless/pkg/challenge"
	"github.com/JohanEkblad/passwordless/pkg/directory"
	"github.com/JohanEkblad/passwordless/pkg/verifier"
)

// Service orchestrates registration and authentication ceremonies.
type Service struct {
	config     *Config
	directory  *directory.Directory
	challenges challenge.Ledger
	verifier   verifier.Verifier
	tokens     TokenIssuer
	configured bool
}

// ServiceParams contains dependencies for creating a ceremony service.
type ServiceParams struct {
	// Config is the Relying Party configuration (required).
	Config *Config

	// Store is the account persistence layer (required).
	Store directory.Store

	// Challenges is the challenge ledger. If nil, an in-process
	// single-slot ledger is used.
	Challenges challenge.Ledger

	// Verifier validates authenticator responses. If nil, a verifier is
	// built from the configuration.
	Verifier verifier.Verifier

	// TokenIssuer mints session tokens after authentication. If nil, a
	// JWT issuer is built from the configuration.
	TokenIssuer TokenIssuer
}

// Registration is the outcome of a completed registration ceremony.
type Registration struct {
	// UserID is the account identifier the credential was bound to.
	UserID string

	// Username is the normalized username.
	Username string

	// CredentialID identifies the newly registered credential.
	CredentialID []byte

	// Transports lists the transport hints stored with the credential.
	Transports []string
}

// Grant is the outcome of a completed authentication ceremony.
type Grant struct {
	// UserID is the authenticated account identifier.
	UserID string

	// Username is the normalized username.
	Username string

	// Token is the session token minted for the subject.
	Token string

	// CloneWarning is set when the credential's signature counter did not
	// advance, which may indicate a cloned authenticator. The grant is
	// still issued.
	CloneWarning bool
}

// NewService creates a new ceremony service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	// Set defaults and validate
	params.Config.SetDefaults()
	if err := params.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir, err := directory.New(params.Store, params.Config.AccountDomain, params.Config.UserIDSalt)
	if err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	challenges := params.Challenges
	if challenges == nil {
		challenges = challenge.NewMemoryLedger()
	}

	v := params.Verifier
	if v == nil {
		v, err = verifier.NewCredentialVerifier(verifier.Params{
			RPID:            params.Config.RPID,
			RPDisplayName:   params.Config.RPDisplayName,
			RPOrigin:        params.Config.RPOrigin,
			CeremonyTimeout: params.Config.CeremonyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create verifier: %w", err)
		}
	}

	tokens := params.TokenIssuer
	if tokens == nil {
		tokens, err = NewJWTIssuer(params.Config.SessionSecret, params.Config.TokenIssuer, params.Config.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("create token issuer: %w", err)
		}
	}

	return &Service{
		config:     params.Config,
		directory:  dir,
		challenges: challenges,
		verifier:   v,
		tokens:     tokens,
		configured: true,
	}, nil
}

// BeginRegistration starts a registration ceremony for the username.
// The username is normalized and a fresh account is created; a username
// that already has an account fails with ErrDuplicateUser.
func (s *Service) BeginRegistration(ctx context.Context, username string) (*CreationOptions, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	account, err := s.directory.Register(ctx, username)
	if err != nil {
		if directory.IsUserExists(err) {
			return nil, NewError("begin registration", ErrDuplicateUser)
		}
		return nil, WrapError("register user", err)
	}

	ch, err := s.challenges.Issue(ctx, challenge.KindRegistration, account.ID)
	if err != nil {
		return nil, WrapError("issue challenge", err)
	}

	return &CreationOptions{
		Challenge: encodeBinary(ch.Value),
		RP: RelyingPartyEntity{
			ID:   s.config.RPID,
			Name: s.config.RPDisplayName,
		},
		User: UserEntity{
			ID:          encodeBinary([]byte(account.ID)),
			Name:        account.Username,
			DisplayName: account.Username,
		},
		PubKeyCredParams: []CredentialParameter{
			{Type: "public-key", Alg: algES256},
			{Type: "public-key", Alg: algRS256},
		},
		Timeout:            timeoutMillis(s.config.CeremonyTimeout),
		ExcludeCredentials: descriptors(account.Credentials),
		Selection:          AuthenticatorSelection{UserVerification: "required"},
		Attestation:        "none",
	}, nil
}

// FinishRegistration completes the pending registration ceremony with the
// raw authenticator response and stores the new credential.
func (s *Service) FinishRegistration(ctx context.Context, response []byte) (*Registration, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	// The challenge is consumed up front; a failed verification still
	// ends the ceremony.
	ch, err := s.challenges.Consume(ctx, challenge.KindRegistration)
	if err != nil {
		return nil, NewError("finish registration", ErrNoActiveCeremony)
	}

	account, err := s.directory.Get(ctx, ch.SubjectID)
	if err != nil {
		if directory.IsUserNotFound(err) {
			return nil, NewError("finish registration", ErrUserNotFound)
		}
		return nil, WrapError("get user", err)
	}

	result, err := s.verifier.VerifyRegistration(response, verifier.RegistrationExpectation{
		Challenge:               ch.Value,
		UserID:                  []byte(account.ID),
		Username:                account.Username,
		RequireUserVerification: s.config.RequireUserVerification,
	})
	if err != nil {
		return nil, WrapError("verify registration", err)
	}

	transports := registrationTransports(response, result.Transports)

	cred := directory.Credential{
		ID:         result.CredentialID,
		PublicKey:  result.PublicKey,
		SignCount:  result.SignCount,
		Transports: transports,
	}
	if err := s.directory.AppendCredential(ctx, account.ID, cred); err != nil {
		return nil, WrapError("store credential", err)
	}

	return &Registration{
		UserID:       account.ID,
		Username:     account.Username,
		CredentialID: result.CredentialID,
		Transports:   transports,
	}, nil
}

// BeginAuthentication starts an authentication ceremony for the username.
// Fails with ErrUserNotFound when the username has no account.
func (s *Service) BeginAuthentication(ctx context.Context, username string) (*RequestOptions, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	account, err := s.directory.Lookup(ctx, username)
	if err != nil {
		if directory.IsUserNotFound(err) {
			return nil, NewError("begin authentication", ErrUserNotFound)
		}
		return nil, WrapError("lookup user", err)
	}

	ch, err := s.challenges.Issue(ctx, challenge.KindAuthentication, account.ID)
	if err != nil {
		return nil, WrapError("issue challenge", err)
	}

	// Options always ask the authenticator for user verification; whether
	// the finish step enforces it is a separate policy
	// (Config.RequireUserVerification).
	return &RequestOptions{
		Challenge:        encodeBinary(ch.Value),
		RPID:             s.config.RPID,
		AllowCredentials: descriptors(account.Credentials),
		Timeout:          timeoutMillis(s.config.CeremonyTimeout),
		UserVerification: "required",
	}, nil
}

// FinishAuthentication completes the pending authentication ceremony with
// the raw authenticator response. On success the credential's signature
// counter is updated and a session grant is issued.
func (s *Service) FinishAuthentication(ctx context.Context, response []byte) (*Grant, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}

	ch, err := s.challenges.Consume(ctx, challenge.KindAuthentication)
	if err != nil {
		return nil, NewError("finish authentication", ErrNoActiveCeremony)
	}

	account, err := s.directory.Get(ctx, ch.SubjectID)
	if err != nil {
		if directory.IsUserNotFound(err) {
			return nil, NewError("finish authentication", ErrUserNotFound)
		}
		return nil, WrapError("get user", err)
	}

	// Resolve the stored credential the assertion claims to use before
	// invoking the verifier.
	credentialID, err := verifier.AssertedCredentialID(response)
	if err != nil {
		return nil, WrapError("finish authentication", err)
	}
	cred := account.Credential(credentialID)
	if cred == nil {
		return nil, NewError("finish authentication", ErrCredentialNotFound)
	}

	result, err := s.verifier.VerifyAuthentication(response, verifier.AssertionExpectation{
		Challenge:               ch.Value,
		UserID:                  []byte(account.ID),
		Username:                account.Username,
		CredentialID:            cred.ID,
		PublicKey:               cred.PublicKey,
		SignCount:               cred.SignCount,
		RequireUserVerification: s.config.RequireUserVerification,
	})
	if err != nil {
		return nil, WrapError("verify assertion", err)
	}

	// The stored counter always tracks the authenticator's report, even
	// when it regressed; the regression is surfaced on the grant instead.
	if err := s.directory.UpdateSignCount(ctx, account.ID, cred.ID, result.NewSignCount); err != nil {
		return nil, WrapError("update sign count", err)
	}

	token, err := s.tokens.Issue(ctx, account)
	if err != nil {
		return nil, WrapError("issue token", err)
	}

	return &Grant{
		UserID:       account.ID,
		Username:     account.Username,
		Token:        token,
		CloneWarning: result.CloneWarning,
	}, nil
}

// VerifySession validates a session token minted by FinishAuthentication.
func (s *Service) VerifySession(token string) (*Session, error) {
	if !s.configured {
		return nil, ErrNotConfigured
	}
	return s.tokens.Verify(token)
}

// Directory returns the account directory.
func (s *Service) Directory() *directory.Directory {
	return s.directory
}

// Config returns the service configuration.
func (s *Service) Config() *Config {
	return s.config
}

// registrationTransports picks the transport hints to store with a new
// credential. Some clients report transports as a top-level key next to
// the credential instead of inside the attestation response; that value
// wins when present.
func registrationTransports(response []byte, fallback []string) []string {
	var body struct {
		Transports []string `json:"transports"`
	}
	if err := json.Unmarshal(response, &body); err == nil && len(body.Transports) > 0 {
		return body.Transports
	}
	return fallback
}
