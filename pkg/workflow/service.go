// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/agentdeck/pkg/audit"
	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/telemetry"
)

// Request is a document submitted to the Service.
type Request struct {
	Data   []byte
	Format Format
	// Source names the caller, such as "cli", "http" or "mcp".
	Source string
}

// Run is one observed validation.
type Run struct {
	ID         string
	Name       string
	Result     Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// Service wraps a Validator with tracing, metrics, logging and auditing.
// Observability failures never change the validation result.
type Service struct {
	validator *Validator
	tracer    trace.Tracer
	metrics   *telemetry.ValidationMetrics
	logger    *slog.Logger
	store     audit.Store
	now       func() time.Time
	newID     func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTracer overrides the tracer, which defaults to the global provider.
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithMetrics records validation metrics.
func WithMetrics(m *telemetry.ValidationMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithAuditStore records every validation in store.
func WithAuditStore(store audit.Store) ServiceOption {
	return func(s *Service) { s.store = store }
}

// NewService creates a Service around validator. A nil validator uses the
// default registry and baseline rules.
func NewService(validator *Validator, opts ...ServiceOption) *Service {
	if validator == nil {
		validator = New(nil)
	}
	s := &Service{
		validator: validator,
		tracer:    otel.Tracer("agentdeck/workflow"),
		logger:    slog.Default(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validator returns the wrapped validator.
func (s *Service) Validator() *Validator { return s.validator }

// Validate checks one document. The error is non-nil only when ctx is
// already done; every validation finding is reported in the Result.
func (s *Service) Validate(ctx context.Context, req Request) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, errors.New(errors.CodeTimeout, "validation cancelled", err)
	}
	format := req.Format
	if format == "" {
		format = FormatJSON
	}

	run := Run{ID: s.newID(), StartedAt: s.now()}
	ctx = telemetry.WithRunID(ctx, run.ID)
	strict := s.validator.opts != Options{}
	ctx, span := s.tracer.Start(ctx, "Workflow.Validate",
		trace.WithAttributes(telemetry.ValidationAttributes(run.ID, string(format), req.Source, strict)...),
	)
	defer span.End()

	hook := func(stage Stage, issues int) {
		span.AddEvent(string(stage), trace.WithAttributes(attribute.Int(telemetry.AttrIssueCount, issues)))
	}
	result, doc := s.validator.run(req.Data, format, hook)
	run.Result = result
	run.FinishedAt = s.now()
	run.Name, _ = doc.Name.Str()

	nodes, edges := -1, -1
	if doc.HasNodes {
		nodes = len(doc.Nodes)
	}
	if doc.HasEdges {
		edges = len(doc.Edges)
	}
	span.SetAttributes(telemetry.DocumentAttributes(run.Name, nodes, edges)...)
	span.SetAttributes(telemetry.ResultAttributes(result.Valid, string(result.Stage), len(result.Issues))...)
	if result.Valid {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "workflow definition is invalid")
	}

	s.metrics.RecordValidation(ctx, outcome(result), string(format), issuesByScope(result), run.FinishedAt.Sub(run.StartedAt))
	s.log(ctx, req, run)
	s.audit(ctx, req, format, run)
	return run, nil
}

func (s *Service) log(ctx context.Context, req Request, run Run) {
	attrs := []any{
		"run_id", run.ID,
		"source", req.Source,
		"valid", run.Result.Valid,
		"stage", run.Result.Stage,
		"errors", len(run.Result.Issues),
	}
	if run.Name != "" {
		attrs = append(attrs, "workflow", run.Name)
	}
	if run.Result.Valid {
		s.logger.InfoContext(ctx, "workflow validated", attrs...)
		return
	}
	s.logger.WarnContext(ctx, "workflow rejected", attrs...)
	for _, issue := range run.Result.Issues {
		s.logger.DebugContext(ctx, "validation issue",
			"scope", issue.Scope,
			"code", issue.Code,
			"index", issue.Index,
			"message", issue.Message,
		)
	}
}

func (s *Service) audit(ctx context.Context, req Request, format Format, run Run) {
	if s.store == nil {
		return
	}
	rec := audit.Record{
		RunID:      run.ID,
		Name:       run.Name,
		Source:     req.Source,
		Format:     string(format),
		Valid:      run.Result.Valid,
		Stage:      string(run.Result.Stage),
		ErrorCount: len(run.Result.Issues),
		Errors:     run.Result.Errors(),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if err := s.store.Record(ctx, rec); err != nil {
		wrapped := errors.New(errors.CodeInternal, "audit record failed", err).WithContext("run_id", run.ID)
		s.metrics.RecordError(ctx, wrapped, "audit")
		s.logger.ErrorContext(ctx, "audit record failed", "error", err)
	}
}

func outcome(r Result) string {
	switch {
	case r.Valid:
		return telemetry.OutcomeValid
	case r.Stage == StageFailed:
		return telemetry.OutcomeParseError
	default:
		return telemetry.OutcomeInvalid
	}
}

func issuesByScope(r Result) map[string]int {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string]int, 5)
	for _, issue := range r.Issues {
		out[string(issue.Scope)]++
	}
	return out
}
