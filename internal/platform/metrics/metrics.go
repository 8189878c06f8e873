// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes Prometheus counters for authentication outcomes and
// access-gate decisions.
//
// A nil [*Recorder] is valid and records nothing, so packages that take one
// can be exercised in tests without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for flow counters.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Gate decision labels.
const (
	DenyUnauthenticated = "unauthenticated"
	DenyForbidden       = "forbidden"
)

// Recorder owns the counters of one process.
type Recorder struct {
	flows *prometheus.CounterVec
	gates *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
// Panics if registration fails (following prometheus convention).
func New(reg prometheus.Registerer) *Recorder {
	recorder := &Recorder{
		flows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazette_auth_flow_total",
				Help: "Authentication flow invocations by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		gates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gazette_access_denied_total",
				Help: "Requests stopped by an access gate",
			},
			[]string{"reason"},
		),
	}
	reg.MustRegister(recorder.flows, recorder.gates)
	return recorder
}

// Flow counts one invocation of flow ending in outcome (use Outcome* constants).
func (r *Recorder) Flow(flow, outcome string) {
	if r == nil {
		return
	}
	r.flows.WithLabelValues(flow, outcome).Inc()
}

// Denied counts one request stopped by a gate (use Deny* constants).
func (r *Recorder) Denied(reason string) {
	if r == nil {
		return
	}
	r.gates.WithLabelValues(reason).Inc()
}
