// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"testing"
	"time"

	deckerrors "github.com/jllopis/agentdeck/pkg/errors"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(threshold int) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(BreakerConfig{FailureThreshold: threshold, Cooldown: time.Minute, Name: "platform"})
	b.now = clock.now
	return b, clock
}

func fail(context.Context) error { return upstream() }
func succeed(context.Context) error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(2)
	ctx := context.Background()

	_ = b.Call(ctx, fail)
	if b.State() != StateClosed {
		t.Fatalf("state = %s after one failure", b.State())
	}
	_ = b.Call(ctx, fail)
	if b.State() != StateOpen {
		t.Fatalf("state = %s after threshold", b.State())
	}

	called := false
	err := b.Call(ctx, func(context.Context) error { called = true; return nil })
	if called {
		t.Error("open breaker should not run fn")
	}
	if !deckerrors.HasCode(err, deckerrors.CodeUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
	if deckerrors.IsRecoverable(err) {
		t.Error("open breaker errors should not be retried")
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker(1)
	ctx := context.Background()

	_ = b.Call(ctx, fail)
	clock.t = clock.t.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %s after cooldown", b.State())
	}
	if err := b.Call(ctx, succeed); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %s after trial success", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = b.Call(ctx, fail)
	}
	clock.t = clock.t.Add(2 * time.Minute)
	_ = b.Call(ctx, fail)
	if b.State() != StateOpen {
		t.Fatalf("state = %s after failed trial", b.State())
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	b, _ := newTestBreaker(1)
	_ = b.Call(context.Background(), func(context.Context) error {
		return deckerrors.New(deckerrors.CodeInvalidInput, "bad workflow", nil)
	})
	if b.State() != StateClosed {
		t.Fatalf("client errors should not trip the breaker, state = %s", b.State())
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(2)
	ctx := context.Background()
	_ = b.Call(ctx, fail)
	_ = b.Call(ctx, succeed)
	_ = b.Call(ctx, fail)
	if b.State() != StateClosed {
		t.Fatalf("state = %s, failures should have reset", b.State())
	}
	b.Reset()
	if b.State() != StateClosed {
		t.Fatal("reset should close the breaker")
	}
}
