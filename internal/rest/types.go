// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package rest

// SessionCookieName is the cookie carrying the session token minted after
// a successful authentication ceremony.
const SessionCookieName = "passwordless_session"

// VerifyResponse is the response body of the ceremony finish endpoints.
// On failure Msg carries the reason and Status echoes the HTTP status,
// matching what the reference web client expects.
type VerifyResponse struct {
	// Verified reports whether the authenticator response verified.
	Verified bool `json:"verified"`

	// Msg is a human-readable failure reason (failure only).
	Msg string `json:"msg,omitempty"`

	// Status echoes the HTTP status code (failure only).
	Status int `json:"status,omitempty"`
}

// SessionResponse describes the authenticated session.
type SessionResponse struct {
	// Username is the normalized username of the subject.
	Username string `json:"username"`

	// UserID is the subject's account identifier.
	UserID string `json:"user_id"`
}

// LogoutResponse is the response body of the logout endpoint.
type LogoutResponse struct {
	// LoggedOut is always true.
	LoggedOut bool `json:"logged_out"`
}

// ErrorResponse is the response format for request-level errors.
type ErrorResponse struct {
	// Error is the error code.
	Error string `json:"error"`

	// Message is a human-readable error message.
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeDuplicateUser  = "duplicate_user"
	ErrorCodeUserNotFound   = "user_not_found"
	ErrorCodeUnauthorized   = "unauthorized"
	ErrorCodeInternalError  = "internal_error"
)
