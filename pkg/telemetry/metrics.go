// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/agentdeck/pkg/errors"
)

// ValidationMetrics tracks validation volume, findings and latency.
type ValidationMetrics struct {
	validations metric.Int64Counter
	issues      metric.Int64Counter
	duration    metric.Float64Histogram
	failures    metric.Int64Counter
}

// NewValidationMetrics creates the validation instruments on the global
// meter provider.
func NewValidationMetrics() (*ValidationMetrics, error) {
	return NewValidationMetricsWithMeter(otel.Meter("agentdeck/validation"))
}

// NewValidationMetricsWithMeter creates the instruments on a specific meter.
func NewValidationMetricsWithMeter(meter metric.Meter) (*ValidationMetrics, error) {
	validations, err := meter.Int64Counter(
		"agentdeck.validations.total",
		metric.WithDescription("Workflow validations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	issues, err := meter.Int64Counter(
		"agentdeck.validation.issues",
		metric.WithDescription("Validation issues by scope"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"agentdeck.validation.duration_ms",
		metric.WithDescription("Validation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"agentdeck.errors.total",
		metric.WithDescription("Operational errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	return &ValidationMetrics{
		validations: validations,
		issues:      issues,
		duration:    duration,
		failures:    failures,
	}, nil
}

// RecordValidation records one finished validation. issuesByScope may be
// nil for a valid document.
func (m *ValidationMetrics) RecordValidation(ctx context.Context, outcome, format string, issuesByScope map[string]int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.String(AttrFormat, format),
	))
	for scope, n := range issuesByScope {
		if n == 0 {
			continue
		}
		m.issues.Add(ctx, int64(n), metric.WithAttributes(attribute.String(AttrIssueScope, scope)))
	}
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(
		attribute.String(AttrOutcome, outcome),
	))
}

// RecordError counts an operational error, such as an unreachable platform
// API or an audit write failure.
func (m *ValidationMetrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}
	e := errors.As(err)
	recoverable := "false"
	if e.Recoverable {
		recoverable = "true"
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error.code", string(e.Code)),
		attribute.String("component", component),
		attribute.String("recoverable", recoverable),
	))
}
