// Copyright (c) 2026 Johan Ekblad
//
// This file is part of passwordless.
//
// Licensed under the MIT License. See LICENSE for details.

package rest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all passwordless metrics
	Namespace = "passwordless"

	// Label names
	LabelCeremony = "ceremony"
	LabelStep     = "step"
	LabelStatus   = "status"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Ceremony names
	CeremonyRegistration   = "registration"
	CeremonyAuthentication = "authentication"

	// Step names
	StepBegin  = "begin"
	StepFinish = "finish"
)

var (
	// CeremoniesTotal tracks ceremony steps by ceremony, step, and outcome.
	CeremoniesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ceremonies_total",
			Help:      "Total number of ceremony steps by ceremony, step, and status",
		},
		[]string{LabelCeremony, LabelStep, LabelStatus},
	)

	// CeremonyDuration tracks the duration of ceremony steps in seconds.
	CeremonyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ceremony_duration_seconds",
			Help:      "Duration of ceremony steps in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{LabelCeremony, LabelStep},
	)

	// CloneWarningsTotal counts authentications whose signature counter did
	// not advance.
	CloneWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "clone_warnings_total",
			Help:      "Total number of authentications flagged with a clone warning",
		},
	)
)

// recordCeremony records one ceremony step observation.
func recordCeremony(ceremony, step string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	CeremoniesTotal.WithLabelValues(ceremony, step, status).Inc()
	CeremonyDuration.WithLabelValues(ceremony, step).Observe(time.Since(start).Seconds())
}
