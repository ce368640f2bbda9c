// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("connection refused")
	e := New(CodeUpstream, "create workflow failed", cause)

	if e.Code != CodeUpstream {
		t.Errorf("expected CodeUpstream, got %v", e.Code)
	}
	if e.Message != "create workflow failed" {
		t.Errorf("unexpected message %q", e.Message)
	}
	if !errors.Is(e, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}
	if !e.Recoverable {
		t.Errorf("upstream errors should default to recoverable")
	}
}

func TestWithContext(t *testing.T) {
	e := New(CodeValidationFailed, "workflow rejected", nil).
		WithContext("name", "Support triage").
		WithContext("errors", 3)

	if e.Context["name"] != "Support triage" {
		t.Errorf("expected context name")
	}
	if e.Context["errors"] != 3 {
		t.Errorf("expected context errors")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "with cause",
			err:      New(CodeTimeout, "request timed out", errors.New("deadline exceeded")),
			expected: "[TIMEOUT] request timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			err:      New(CodeNotFound, "node type not found", nil),
			expected: "[NOT_FOUND] node type not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "typed error", err: New(CodeUnauthorized, "bad token", nil), expected: CodeUnauthorized},
		{name: "wrapped typed error", err: fmt.Errorf("submit: %w", New(CodeRateLimit, "slow down", nil)), expected: CodeRateLimit},
		{name: "generic error", err: errors.New("boom"), expected: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := As(tt.err)
			if tt.expected == "" {
				if e != nil {
					t.Errorf("expected nil for nil error")
				}
				return
			}
			if e == nil {
				t.Fatalf("expected non-nil error")
			}
			if e.Code != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, e.Code)
			}
		})
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", New(CodeNotFound, "missing", nil))
	if !errors.Is(err, New(CodeNotFound, "", nil)) {
		t.Errorf("expected errors.Is to match on code")
	}
	if errors.Is(err, New(CodeInternal, "", nil)) {
		t.Errorf("expected errors.Is to reject other codes")
	}
}

func TestHasCode(t *testing.T) {
	inner := New(CodeTimeout, "dial", nil)
	outer := New(CodeUpstream, "create workflow", inner)

	if !HasCode(outer, CodeTimeout) {
		t.Errorf("expected nested timeout code to be found")
	}
	if !HasCode(outer, CodeUpstream) {
		t.Errorf("expected outer code to be found")
	}
	if HasCode(outer, CodeNotFound) {
		t.Errorf("unexpected NOT_FOUND match")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("plain errors carry no code")
	}
}

func TestIsRecoverable(t *testing.T) {
	if IsRecoverable(New(CodeInvalidInput, "bad", nil)) {
		t.Errorf("invalid input should not be recoverable")
	}
	if !IsRecoverable(New(CodeRateLimit, "throttled", nil)) {
		t.Errorf("rate limit should be recoverable")
	}
	if IsRecoverable(New(CodeRateLimit, "throttled", nil).WithRecoverable(false)) {
		t.Errorf("explicit override should win")
	}
	if IsRecoverable(errors.New("plain")) {
		t.Errorf("plain errors are not recoverable")
	}
}

func TestMarshalJSON(t *testing.T) {
	e := New(CodeUpstream, "create workflow failed", errors.New("502 bad gateway")).
		WithContext("attempts", 3)

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("unexpected error marshaling: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unexpected error unmarshaling: %v", err)
	}
	if result["code"] != "UPSTREAM_ERROR" {
		t.Errorf("expected code UPSTREAM_ERROR, got %v", result["code"])
	}
	if result["cause"] != "502 bad gateway" {
		t.Errorf("expected cause, got %v", result["cause"])
	}
	if result["recoverable"] != true {
		t.Errorf("expected recoverable true")
	}
	if result["status"] != float64(502) {
		t.Errorf("expected status 502, got %v", result["status"])
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{CodeNotFound, 404},
		{CodeUnauthorized, 401},
		{CodeInvalidInput, 400},
		{CodeValidationFailed, 422},
		{CodeTimeout, 504},
		{CodeRateLimit, 429},
		{CodeUpstream, 502},
		{CodeInternal, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "test", nil).StatusCode; got != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestFromStatus(t *testing.T) {
	tests := map[int]ErrorCode{
		401: CodeUnauthorized,
		403: CodeUnauthorized,
		404: CodeNotFound,
		408: CodeTimeout,
		422: CodeInvalidInput,
		429: CodeRateLimit,
		500: CodeUpstream,
		503: CodeUpstream,
		504: CodeTimeout,
	}
	for status, want := range tests {
		if got := FromStatus(status); got != want {
			t.Errorf("FromStatus(%d) = %v, want %v", status, got, want)
		}
	}
}
