// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package ceremony

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JohanEkblad/passwordless/pkg/directory"
)

// Session describes the authenticated subject carried by a session token.
type Session struct {
	// UserID is the account identifier.
	UserID string

	// Username is the normalized username.
	Username string
}

// TokenIssuer mints and verifies session tokens for authenticated subjects.
type TokenIssuer interface {
	// Issue creates a session token for the account.
	Issue(ctx context.Context, account *directory.UserAccount) (string, error)

	// Verify validates a session token and returns the session it carries.
	Verify(token string) (*Session, error)
}

// JWTIssuer issues HMAC-signed JWT session tokens.
type JWTIssuer struct {
	// secret signs and verifies tokens
	secret []byte
	// issuer is the JWT issuer claim
	issuer string
	// expiresIn is how long tokens are valid
	expiresIn time.Duration
}

// NewJWTIssuer creates a session token issuer signing with the given secret.
func NewJWTIssuer(secret, issuer string, expiresIn time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if issuer == "" {
		issuer = "passwordless"
	}
	if expiresIn == 0 {
		expiresIn = 24 * time.Hour
	}

	return &JWTIssuer{
		secret:    []byte(secret),
		issuer:    issuer,
		expiresIn: expiresIn,
	}, nil
}

// Issue creates a JWT for the authenticated account.
func (g *JWTIssuer) Issue(ctx context.Context, account *directory.UserAccount) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"iss": g.issuer,
		"sub": account.ID,
		"iat": now.Unix(),
		"exp": now.Add(g.expiresIn).Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
		// Custom claims
		"username": account.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify validates a JWT and returns the session it carries.
func (g *JWTIssuer) Verify(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return g.secret, nil
	},
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	return &Session{UserID: sub, Username: username}, nil
}

// ExpiresIn returns the token expiration duration.
func (g *JWTIssuer) ExpiresIn() time.Duration {
	return g.expiresIn
}
