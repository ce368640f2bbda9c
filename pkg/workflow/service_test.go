// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jllopis/agentdeck/pkg/audit"
	deckerrors "github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/telemetry"
)

type failingStore struct{}

func (failingStore) Record(context.Context, audit.Record) error {
	return errors.New("disk full")
}

func (failingStore) List(context.Context, audit.Filter) ([]audit.Record, error) {
	return nil, nil
}

func newTestService(t *testing.T, store audit.Store, logs *bytes.Buffer) (*Service, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(nil,
		WithTracer(tp.Tracer("test")),
		WithLogger(telemetry.NewLogger(logs, "debug", "text")),
		WithAuditStore(store),
	)
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	svc.newID = func() string { return "run-fixed" }
	return svc, recorder
}

func TestServiceValidateRecordsAudit(t *testing.T) {
	store := audit.NewMemoryStore()
	var logs bytes.Buffer
	svc, recorder := newTestService(t, store, &logs)

	run, err := svc.Validate(context.Background(), Request{
		Data:   []byte(`{"name":"Triage","nodes":[],"edges":[{"source":"a","target":"b","data":{"sourceOutput":"o","targetInput":"i"}}]}`),
		Source: "cli",
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if run.ID != "run-fixed" || run.Name != "Triage" {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Result.Valid {
		t.Fatalf("expected invalid result")
	}

	recs, err := store.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []audit.Record{{
		RunID:      "run-fixed",
		Name:       "Triage",
		Source:     "cli",
		Format:     "json",
		Valid:      false,
		Stage:      "done",
		ErrorCount: 2,
		Errors: []string{
			`Edge at index 0 references non-existent source node: "a"`,
			`Edge at index 0 references non-existent target node: "b"`,
		},
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("audit mismatch (-want +got):\n%s", diff)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	var stages []string
	for _, ev := range spans[0].Events() {
		stages = append(stages, ev.Name)
	}
	wantStages := []string{"start", "parsed", "structure_checked", "nodes_checked", "edges_checked", "contract_checked", "done"}
	if diff := cmp.Diff(wantStages, stages); diff != "" {
		t.Errorf("stage events mismatch (-want +got):\n%s", diff)
	}

	if !strings.Contains(logs.String(), "workflow rejected") {
		t.Errorf("expected rejection log, got %q", logs.String())
	}
	issueLines := 0
	for _, line := range strings.Split(logs.String(), "\n") {
		if !strings.Contains(line, "validation issue") {
			continue
		}
		issueLines++
		if !strings.Contains(line, "run_id=run-fixed") {
			t.Errorf("issue log without run id: %q", line)
		}
	}
	if issueLines != 2 {
		t.Errorf("issue log lines = %d, want 2", issueLines)
	}
}

func TestServiceValidateParseFailure(t *testing.T) {
	var logs bytes.Buffer
	svc, recorder := newTestService(t, nil, &logs)

	run, err := svc.Validate(context.Background(), Request{Data: []byte("name: [x"), Format: FormatYAML})
	if err != nil {
		t.Fatal(err)
	}
	if run.Result.Stage != StageFailed || len(run.Result.Issues) != 1 {
		t.Fatalf("unexpected result %+v", run.Result)
	}
	var stages []string
	for _, ev := range recorder.Ended()[0].Events() {
		stages = append(stages, ev.Name)
	}
	if diff := cmp.Diff([]string{"start", "failed"}, stages); diff != "" {
		t.Errorf("stage events mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceAuditFailureDoesNotChangeResult(t *testing.T) {
	var logs bytes.Buffer
	svc, _ := newTestService(t, failingStore{}, &logs)

	run, err := svc.Validate(context.Background(), Request{Data: []byte(`{"name":"A","nodes":[],"edges":[]}`)})
	if err != nil {
		t.Fatal(err)
	}
	if !run.Result.Valid {
		t.Errorf("expected valid result, got %v", run.Result.Errors())
	}
	if !strings.Contains(logs.String(), "audit record failed") || !strings.Contains(logs.String(), "run_id=run-fixed") {
		t.Errorf("expected audit failure log with run id, got %q", logs.String())
	}
}

func TestServiceValidateCancelled(t *testing.T) {
	var logs bytes.Buffer
	svc, _ := newTestService(t, nil, &logs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Validate(ctx, Request{Data: []byte(`{}`)})
	if !deckerrors.HasCode(err, deckerrors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"name":"A","nodes":[],"edges":[]}`, telemetry.OutcomeValid},
		{`{"nodes":[],"edges":[]}`, telemetry.OutcomeInvalid},
		{`{`, telemetry.OutcomeParseError},
	}
	for _, tt := range tests {
		if got := outcome(Validate(tt.input)); got != tt.want {
			t.Errorf("outcome(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
