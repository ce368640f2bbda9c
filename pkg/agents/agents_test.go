// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/resilience"
	"github.com/jllopis/agentdeck/pkg/telemetry"
	"github.com/jllopis/agentdeck/pkg/workflow"
)

const validDoc = `{"name":"Doc name","description":"from file","nodes":[{"id":"in","type":"InputNode","config":{"input_fields":["q"]}}],"edges":[],"config":{"max_steps":3}}`

func fastRetry() resilience.RetryConfig {
	return resilience.DefaultRetryConfig().WithInitialDelay(time.Millisecond).WithMaxDelay(2 * time.Millisecond)
}

func TestBuildCreateRequest(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		format    workflow.Format
		overrides Overrides
		want      map[string]string
	}{
		{
			name:      "form values win",
			doc:       validDoc,
			overrides: Overrides{Name: "Form name", Description: "form desc"},
			want: map[string]string{
				"name":        `"Form name"`,
				"description": `"form desc"`,
				"nodes":       `[{"id":"in","type":"InputNode","config":{"input_fields":["q"]}}]`,
				"edges":       `[]`,
				"config":      `{"max_steps":3}`,
			},
		},
		{
			name: "document values as fallback",
			doc:  validDoc,
			want: map[string]string{
				"name":        `"Doc name"`,
				"description": `"from file"`,
				"nodes":       `[{"id":"in","type":"InputNode","config":{"input_fields":["q"]}}]`,
				"edges":       `[]`,
				"config":      `{"max_steps":3}`,
			},
		},
		{
			name:      "absent fields default",
			doc:       `{"name":"x"}`,
			overrides: Overrides{Name: "Form"},
			want: map[string]string{
				"name":        `"Form"`,
				"description": `""`,
				"nodes":       `[]`,
				"edges":       `[]`,
				"config":      `{}`,
			},
		},
		{
			name:   "yaml document",
			doc:    "name: Y\nnodes:\n  - id: a\n    type: OutputNode\n    config: {}\nedges: []\n",
			format: workflow.FormatYAML,
			want: map[string]string{
				"name":        `"Y"`,
				"description": `""`,
				"nodes":       `[{"id":"a","type":"OutputNode","config":{}}]`,
				"edges":       `[]`,
				"config":      `{}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildCreateRequest([]byte(tt.doc), tt.format, tt.overrides)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			raw, err := json.Marshal(req)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got map[string]json.RawMessage
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			gotStr := make(map[string]string, len(got))
			for k, v := range got {
				gotStr[k] = string(v)
			}
			if diff := cmp.Diff(tt.want, gotStr); diff != "" {
				t.Fatalf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildCreateRequestMalformed(t *testing.T) {
	_, err := BuildCreateRequest([]byte(`{"name":`), workflow.FormatJSON, Overrides{})
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestClientCreateWorkflow(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"workflow_id":"wf-42","message":"created"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", WithToken("secret"), WithRetry(fastRetry()))
	resp, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{
		Name:   "A",
		Nodes:  json.RawMessage(`[]`),
		Edges:  json.RawMessage(`[]`),
		Config: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.WorkflowID != "wf-42" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/workflows" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["name"] != "A" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{"string detail", http.StatusUnprocessableEntity, `{"detail":"bad nodes"}`, errors.CodeInvalidInput, "bad nodes"},
		{"structured detail", http.StatusBadRequest, `{"detail": [ {"loc": ["body"]} ]}`, errors.CodeInvalidInput, `[{"loc":["body"]}]`},
		{"numeric detail", http.StatusBadRequest, `{"detail":42}`, errors.CodeInvalidInput, "42"},
		{"empty detail", http.StatusUnprocessableEntity, `{"detail":""}`, errors.CodeInvalidInput, "API Error: 422 Unprocessable Entity"},
		{"zero detail", http.StatusBadRequest, `{"detail":0}`, errors.CodeInvalidInput, "API Error: 400 Bad Request"},
		{"false detail", http.StatusBadRequest, `{"detail":false}`, errors.CodeInvalidInput, "API Error: 400 Bad Request"},
		{"null detail", http.StatusBadRequest, `{"detail":null}`, errors.CodeInvalidInput, "API Error: 400 Bad Request"},
		{"no body", http.StatusUnauthorized, ``, errors.CodeUnauthorized, "API Error: 401 Unauthorized"},
		{"not found", http.StatusNotFound, `nope`, errors.CodeNotFound, "API Error: 404 Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, WithRetry(fastRetry()))
			_, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{})
			e := errors.As(err)
			if e == nil || e.Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if e.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", e.Message, tt.wantMsg)
			}
			if e.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", e.StatusCode, tt.status)
			}
			if calls.Load() != 1 {
				t.Fatalf("client errors must not be retried, got %d calls", calls.Load())
			}
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"workflow_id":"wf-1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetry(fastRetry()), WithClientLogger(telemetry.DiscardLogger()))
	resp, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.WorkflowID != "wf-1" || calls.Load() != 3 {
		t.Fatalf("resp=%+v calls=%d", resp, calls.Load())
	}
}

func TestClientBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	breaker := resilience.NewBreaker(resilience.BreakerConfig{FailureThreshold: 2, Cooldown: time.Hour, Name: "platform"})
	client := NewClient(srv.URL,
		WithRetry(fastRetry().WithMaxAttempts(1)),
		WithBreaker(breaker),
	)
	for i := 0; i < 2; i++ {
		if _, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{}); !errors.HasCode(err, errors.CodeUpstream) {
			t.Fatalf("call %d: expected upstream error, got %v", i, err)
		}
	}
	if breaker.State() != resilience.StateOpen {
		t.Fatalf("breaker state = %s", breaker.State())
	}
	_, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{})
	if errors.As(err).Message != "circuit breaker open" {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open breaker must not reach the server, got %d calls", calls.Load())
	}
}

type fakePlatform struct {
	got   *CreateWorkflowRequest
	resp  CreateWorkflowResponse
	err   error
	calls int
}

func (f *fakePlatform) CreateWorkflow(_ context.Context, req CreateWorkflowRequest) (CreateWorkflowResponse, error) {
	f.calls++
	f.got = &req
	return f.resp, f.err
}

func TestCreatorSubmitsValidDocument(t *testing.T) {
	platform := &fakePlatform{resp: CreateWorkflowResponse{WorkflowID: "wf-9"}}
	creator := NewCreator(workflow.NewService(nil, workflow.WithLogger(telemetry.DiscardLogger())), platform)

	sub, err := creator.Create(context.Background(), []byte(validDoc), workflow.FormatJSON, Overrides{Name: "Agent"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sub.Run.Result.Valid {
		t.Fatalf("expected valid run: %v", sub.Run.Result.Errors())
	}
	if sub.Response.WorkflowID != "wf-9" || platform.got == nil || platform.got.Name != "Agent" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
}

func TestCreatorRefusesInvalidDocument(t *testing.T) {
	platform := &fakePlatform{}
	creator := NewCreator(workflow.NewService(nil, workflow.WithLogger(telemetry.DiscardLogger())), platform)

	sub, err := creator.Create(context.Background(), []byte(`{"nodes":[],"edges":[]}`), workflow.FormatJSON, Overrides{Name: "Agent"})
	if !errors.HasCode(err, errors.CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if errors.As(err).Message != `workflow validation failed: Missing or invalid "name" field` {
		t.Fatalf("message = %q", errors.As(err).Message)
	}
	if platform.calls != 0 {
		t.Fatalf("invalid document must not be submitted")
	}
	if sub.Run.Result.Valid || len(sub.Run.Result.Issues) != 1 {
		t.Fatalf("run should carry the result: %+v", sub.Run)
	}
}

func TestCreatorPropagatesPlatformErrors(t *testing.T) {
	platform := &fakePlatform{err: errors.New(errors.CodeUpstream, "down", nil)}
	creator := NewCreator(nil, platform)
	_, err := creator.Create(context.Background(), []byte(validDoc), workflow.FormatJSON, Overrides{})
	if !errors.HasCode(err, errors.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
