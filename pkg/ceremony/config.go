// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"fmt"
	"time"
)

// Config contains Relying Party configuration for ceremony orchestration.
type Config struct {
	// RPID is the Relying Party identifier, typically the site domain.
	RPID string `yaml:"rp_id" json:"rp_id" mapstructure:"rp_id"`

	// RPDisplayName is the human-readable Relying Party name.
	RPDisplayName string `yaml:"rp_display_name" json:"rp_display_name" mapstructure:"rp_display_name"`

	// RPOrigin is the web origin authenticator responses must be bound to.
	RPOrigin string `yaml:"rp_origin" json:"rp_origin" mapstructure:"rp_origin"`

	// AccountDomain is appended to bare usernames during normalization.
	// Defaults to RPID.
	AccountDomain string `yaml:"account_domain" json:"account_domain" mapstructure:"account_domain"`

	// UserIDSalt seasons the username hash that derives account
	// identifiers. Changing it orphans every existing account.
	UserIDSalt string `yaml:"user_id_salt" json:"user_id_salt" mapstructure:"user_id_salt"`

	// CeremonyTimeout is the client-facing ceremony timeout. Defaults to
	// one minute.
	CeremonyTimeout time.Duration `yaml:"ceremony_timeout" json:"ceremony_timeout" mapstructure:"ceremony_timeout"`

	// RequireUserVerification enforces the UV flag on authenticator
	// responses. Off by default; most authenticators set it anyway.
	RequireUserVerification bool `yaml:"require_user_verification" json:"require_user_verification" mapstructure:"require_user_verification"`

	// SessionSecret signs the session tokens issued after authentication.
	SessionSecret string `yaml:"session_secret" json:"session_secret" mapstructure:"session_secret"`

	// SessionTTL is how long issued session tokens stay valid. Defaults
	// to 24 hours.
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl" mapstructure:"session_ttl"`

	// TokenIssuer is the iss claim on issued session tokens. Defaults to
	// "passwordless".
	TokenIssuer string `yaml:"token_issuer" json:"token_issuer" mapstructure:"token_issuer"`
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.AccountDomain == "" {
		c.AccountDomain = c.RPID
	}
	if c.CeremonyTimeout == 0 {
		c.CeremonyTimeout = time.Minute
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 24 * time.Hour
	}
	if c.TokenIssuer == "" {
		c.TokenIssuer = "passwordless"
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.RPID == "" {
		return fmt.Errorf("rp_id is required")
	}
	if c.RPDisplayName == "" {
		return fmt.Errorf("rp_display_name is required")
	}
	if c.RPOrigin == "" {
		return fmt.Errorf("rp_origin is required")
	}
	if c.UserIDSalt == "" {
		return fmt.Errorf("user_id_salt is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("session_secret is required")
	}
	if c.CeremonyTimeout < 0 {
		return fmt.Errorf("ceremony_timeout must not be negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	return nil
}
