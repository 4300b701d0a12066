// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountChi mounts ceremony routes on a chi router.
//
// Example:
//
//	handler := rest.NewHandler(svc)
//	r.Route("/", func(r chi.Router) {
//	    rest.MountChi(r, handler)
//	})
func MountChi(r chi.Router, h *Handler) {
	r.Get("/generate-registration-options", h.GenerateRegistrationOptions)
	r.Post("/verify-registration-response", h.VerifyRegistrationResponse)
	r.Get("/generate-authentication-options", h.GenerateAuthenticationOptions)
	r.Post("/verify-authentication-response", h.VerifyAuthenticationResponse)
	r.Get("/session", h.Session)
	r.Get("/logout", h.Logout)
}

// RouteEntry represents a single route with its method, path, and handler.
type RouteEntry struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes returns a slice of route entries for manual mounting.
func (h *Handler) Routes() []RouteEntry {
	return []RouteEntry{
		{Method: "GET", Path: "/generate-registration-options", Handler: h.GenerateRegistrationOptions},
		{Method: "POST", Path: "/verify-registration-response", Handler: h.VerifyRegistrationResponse},
		{Method: "GET", Path: "/generate-authentication-options", Handler: h.GenerateAuthenticationOptions},
		{Method: "POST", Path: "/verify-authentication-response", Handler: h.VerifyAuthenticationResponse},
		{Method: "GET", Path: "/session", Handler: h.Session},
		{Method: "GET", Path: "/logout", Handler: h.Logout},
	}
}
