// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

// Package rest exposes the ceremony orchestrator over HTTP. The endpoint
// paths and response shapes follow the reference passwordless web client.
package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JohanEkblad/passwordless/pkg/ceremony"
	"github.com/JohanEkblad/passwordless/pkg/verifier"
)

// maxResponseBytes bounds authenticator response bodies.
const maxResponseBytes = 1 << 20

// Handler provides HTTP handlers for ceremony operations.
// These handlers can be mounted on any chi router.
type Handler struct {
	service *ceremony.Service
	logger  *slog.Logger
}

// NewHandler creates a new ceremony HTTP handler.
func NewHandler(service *ceremony.Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger for the handler.
func (h *Handler) WithLogger(logger *slog.Logger) *Handler {
	h.logger = logger
	return h
}

// GenerateRegistrationOptions handles GET /generate-registration-options
//
// Query param: username (required)
// Response: WebAuthn PublicKeyCredentialCreationOptions
// Returns 406 when the username is already registered.
func (h *Handler) GenerateRegistrationOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	username := r.URL.Query().Get("username")
	if username == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "username is required")
		return
	}

	options, err := h.service.BeginRegistration(r.Context(), username)
	recordCeremony(CeremonyRegistration, StepBegin, start, err)
	if err != nil {
		if ceremony.IsDuplicateUser(err) {
			h.writeError(w, http.StatusNotAcceptable, ErrorCodeDuplicateUser, "user already registered")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("registration ceremony started", "username", username)
	h.writeJSON(w, http.StatusOK, options)
}

// VerifyRegistrationResponse handles POST /verify-registration-response
//
// Request body: attestation response from the authenticator
// Response: {"verified": true} or {"verified": false, "msg": ..., "status": 400}
func (h *Handler) VerifyRegistrationResponse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxResponseBytes))
	if err != nil {
		h.writeVerifyFailure(w, "could not read request body")
		return
	}

	registration, err := h.service.FinishRegistration(r.Context(), body)
	recordCeremony(CeremonyRegistration, StepFinish, start, err)
	if err != nil {
		h.logger.Warn("registration verification failed", "error", err)
		h.writeVerifyFailure(w, verifyFailureMessage(err))
		return
	}

	h.logger.Info("credential registered",
		"username", registration.Username,
		"transports", registration.Transports)
	h.writeJSON(w, http.StatusOK, VerifyResponse{Verified: true})
}

// GenerateAuthenticationOptions handles GET /generate-authentication-options
//
// Query param: username (required)
// Response: WebAuthn PublicKeyCredentialRequestOptions
// Returns 404 when the username has no account.
func (h *Handler) GenerateAuthenticationOptions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	username := r.URL.Query().Get("username")
	if username == "" {
		h.writeError(w, http.StatusBadRequest, ErrorCodeInvalidRequest, "username is required")
		return
	}

	options, err := h.service.BeginAuthentication(r.Context(), username)
	recordCeremony(CeremonyAuthentication, StepBegin, start, err)
	if err != nil {
		if ceremony.IsUserNotFound(err) {
			h.writeError(w, http.StatusNotFound, ErrorCodeUserNotFound, "user not found")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("authentication ceremony started", "username", username)
	h.writeJSON(w, http.StatusOK, options)
}

// VerifyAuthenticationResponse handles POST /verify-authentication-response
//
// Request body: assertion response from the authenticator
// Response: {"verified": true} plus a session cookie, or
// {"verified": false, "msg": ..., "status": 400}
func (h *Handler) VerifyAuthenticationResponse(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxResponseBytes))
	if err != nil {
		h.writeVerifyFailure(w, "could not read request body")
		return
	}

	grant, err := h.service.FinishAuthentication(r.Context(), body)
	recordCeremony(CeremonyAuthentication, StepFinish, start, err)
	if err != nil {
		h.logger.Warn("authentication verification failed", "error", err)
		h.writeVerifyFailure(w, verifyFailureMessage(err))
		return
	}

	if grant.CloneWarning {
		CloneWarningsTotal.Inc()
		h.logger.Warn("signature counter did not advance, possible cloned authenticator",
			"username", grant.Username)
	}

	http.SetCookie(w, h.sessionCookie(grant.Token, int(h.service.Config().SessionTTL.Seconds())))
	h.logger.Info("user authenticated", "username", grant.Username)
	h.writeJSON(w, http.StatusOK, VerifyResponse{Verified: true})
}

// Session handles GET /session
//
// Reads the session cookie and returns the authenticated subject, or 401.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "not logged in")
		return
	}

	session, err := h.service.VerifySession(cookie.Value)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid session")
		return
	}

	h.writeJSON(w, http.StatusOK, SessionResponse{
		Username: session.Username,
		UserID:   session.UserID,
	})
}

// Logout handles GET /logout
//
// Clears the session cookie. Always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	h.writeJSON(w, http.StatusOK, LogoutResponse{LoggedOut: true})
}

// sessionCookie builds the session cookie with the given value and max age.
func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// handleServiceError maps unexpected service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	h.logger.Error("ceremony service error", "error", err)
	h.writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal server error")
}

// verifyFailureMessage picks the client-facing reason for a failed finish
// step without leaking internals.
func verifyFailureMessage(err error) string {
	switch {
	case ceremony.IsNoActiveCeremony(err):
		return "no ceremony in progress"
	case ceremony.IsUserNotFound(err):
		return "user not found"
	case ceremony.IsCredentialNotFound(err):
		return "credential not registered"
	case verifier.IsVerificationFailed(err):
		return "verification failed"
	default:
		return "verification failed"
	}
}

// writeVerifyFailure writes the failure body of a finish endpoint. The
// HTTP status stays 200; the failure is carried in the body, which is
// what the reference web client branches on.
func (h *Handler) writeVerifyFailure(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusOK, VerifyResponse{
		Verified: false,
		Msg:      msg,
		Status:   http.StatusBadRequest,
	})
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Response headers already written, can only log the error
		h.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status)
	}
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
