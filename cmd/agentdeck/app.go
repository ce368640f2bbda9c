// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jllopis/agentdeck/pkg/agents"
	"github.com/jllopis/agentdeck/pkg/audit"
	"github.com/jllopis/agentdeck/pkg/config"
	"github.com/jllopis/agentdeck/pkg/resilience"
	"github.com/jllopis/agentdeck/pkg/telemetry"
	"github.com/jllopis/agentdeck/pkg/workflow"
	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

// app holds the long-lived components built from one configuration.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	metrics    *telemetry.ValidationMetrics
	store      audit.Store
	closeStore func() error
	shutdown   telemetry.ShutdownFunc
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithCLI(c.flags.ConfigArgs)
	if err != nil {
		return nil, NewConfigError(err, config.ConfigPath(c.flags.ConfigArgs))
	}
	return cfg, nil
}

// newApp initializes logging, telemetry and the audit store. Logs and
// telemetry go to stderr so stdout stays parseable.
func (c *cli) newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:        cfg,
		logger:     telemetry.ConfigureSlog(c.stderr, cfg.Log.Level, cfg.Log.Format),
		closeStore: func() error { return nil },
	}

	shutdown, err := telemetry.InitWithConfig("agentdeck", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		Writer:       c.stderr,
	})
	if err != nil {
		return nil, NewConfigError(err, config.ConfigPath(c.flags.ConfigArgs))
	}
	a.shutdown = shutdown

	a.metrics, err = telemetry.NewValidationMetrics()
	if err != nil {
		a.logger.Warn("validation metrics disabled", "error", err)
	}

	if cfg.Audit.Enabled {
		store, closeStore, err := audit.Open(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			_ = shutdown(context.Background())
			return nil, NewConfigError(fmt.Errorf("open audit store: %w", err), config.ConfigPath(c.flags.ConfigArgs))
		}
		a.store, a.closeStore = store, closeStore
	}
	return a, nil
}

func (a *app) close() {
	if err := a.closeStore(); err != nil {
		a.logger.Warn("closing audit store", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", "error", err)
	}
}

// newService builds a validation service for cfg. It is called again
// after a configuration reload, reusing the store and metrics.
func (a *app) newService(cfg *config.Config) (*workflow.Service, error) {
	registry, err := schema.LoadRegistry(cfg.Validation.Catalog)
	if err != nil {
		return nil, err
	}
	validator := workflow.New(registry, workflow.WithOptions(validationOptions(cfg.Validation)))
	opts := []workflow.ServiceOption{
		workflow.WithLogger(a.logger),
		workflow.WithMetrics(a.metrics),
	}
	if a.store != nil {
		opts = append(opts, workflow.WithAuditStore(a.store))
	}
	return workflow.NewService(validator, opts...), nil
}

func (a *app) newPlatformClient(timeout time.Duration) *agents.Client {
	api := a.cfg.API
	if api.TimeoutSeconds > 0 && (timeout <= 0 || api.Timeout() < timeout) {
		timeout = api.Timeout()
	}
	retry := resilience.DefaultRetryConfig().WithMaxAttempts(api.Retries + 1)
	breaker := resilience.NewBreaker(resilience.BreakerConfig{Name: "platform", FailureThreshold: 5, Cooldown: 30 * time.Second})
	return agents.NewClient(api.BaseURL,
		agents.WithToken(api.Token),
		agents.WithHTTPClient(newHTTPClient(timeout)),
		agents.WithRetry(retry),
		agents.WithBreaker(breaker),
		agents.WithClientLogger(a.logger),
	)
}

func validationOptions(cfg config.ValidationConfig) workflow.Options {
	if cfg.Strict {
		return workflow.StrictOptions()
	}
	return workflow.Options{
		RejectDuplicateIDs: cfg.DuplicateIDs,
		CheckConfigTypes:   cfg.ConfigTypes,
		CheckDocumentTypes: cfg.DocumentTypes,
	}
}
