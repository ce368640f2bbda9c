// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jllopis/agentdeck/pkg/errors"
)

// BreakerState represents the state of a circuit breaker.
type BreakerState string

const (
	// StateClosed means calls flow normally.
	StateClosed BreakerState = "closed"

	// StateOpen means calls are rejected without reaching the platform.
	StateOpen BreakerState = "open"

	// StateHalfOpen means a limited number of trial calls are allowed.
	StateHalfOpen BreakerState = "half-open"
)

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int

	// SuccessThreshold is the number of half-open successes before closing.
	SuccessThreshold int

	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration

	// Name identifies the breaker in errors and logs.
	Name string

	// Counts decides whether an error counts as a failure. Client errors
	// such as a rejected document should not trip the breaker. Defaults to
	// errors.IsRecoverable.
	Counts func(error) bool
}

// Breaker prevents hammering an unhealthy platform API.
type Breaker struct {
	config    BreakerConfig
	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

// NewBreaker creates a circuit breaker with the given config.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.Name == "" {
		config.Name = "circuit_breaker"
	}
	if config.Counts == nil {
		config.Counts = errors.IsRecoverable
	}
	return &Breaker{config: config, state: StateClosed, now: time.Now}
}

// Call runs fn unless the breaker is open. The lock is not held while fn
// runs, so concurrent callers are not serialized.
func (b *Breaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.state = StateHalfOpen
		b.successes = 0
	}
	if b.state == StateOpen {
		return errors.New(errors.CodeUpstream, "circuit breaker open", nil).
			WithContext("breaker", b.config.Name).
			WithRecoverable(false)
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && b.config.Counts(err) {
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			b.trip()
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.successes = 0
		}
	}
}

// trip opens the breaker. Must be called under lock.
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}

// State returns the current state, moving to half-open if the cooldown
// has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.config.Cooldown {
		b.state = StateHalfOpen
		b.successes = 0
	}
	return b.state
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
