// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"

	"github.com/jllopis/agentdeck/pkg/config"
	"github.com/jllopis/agentdeck/pkg/mcp"
	"github.com/jllopis/agentdeck/pkg/server"
	"github.com/jllopis/agentdeck/pkg/workflow"
)

func (c *cli) runServe(ctx context.Context, args []string) int {
	cmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	cmd.SetOutput(c.stderr)
	addr := cmd.String("addr", "", "Listen address (default server.addr)")
	if err := cmd.Parse(args); err != nil {
		return c.fail(NewInvalidArgumentError("serve", err.Error()))
	}
	if cmd.NArg() > 0 {
		return c.fail(NewInvalidArgumentError("serve", "unexpected arguments"))
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	a, err := c.newApp(cfg)
	if err != nil {
		return c.fail(err)
	}
	defer a.close()
	svc, err := a.newService(cfg)
	if err != nil {
		return c.fail(NewConfigError(err, cfg.Validation.Catalog))
	}

	srv := server.New(svc,
		server.WithLogger(a.logger),
		server.WithAuditStore(a.store),
		server.WithPlatform(a.newPlatformClient(c.flags.Timeout)),
	)
	c.watchConfig(ctx, a, func(next *workflow.Service) {
		srv.SetService(next)
	})

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	if err := srv.ListenAndServe(ctx, listen); err != nil {
		return c.fail(err)
	}
	return exitOK
}

func (c *cli) runMCP(ctx context.Context, args []string) int {
	if len(args) > 0 {
		return c.fail(NewInvalidArgumentError("mcp", "usage: agentdeck mcp"))
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	a, err := c.newApp(cfg)
	if err != nil {
		return c.fail(err)
	}
	defer a.close()
	svc, err := a.newService(cfg)
	if err != nil {
		return c.fail(NewConfigError(err, cfg.Validation.Catalog))
	}

	srv := mcp.NewServer(cfg.MCP.Name, cfg.MCP.Version, svc)
	c.watchConfig(ctx, a, srv.SetService)
	a.logger.Info("mcp server ready on stdio", "name", cfg.MCP.Name)
	if err := srv.ServeStdio(); err != nil {
		return c.fail(err)
	}
	return exitOK
}

// watchConfig rebuilds the validation service whenever the --config file
// changes. It does nothing without --config. The audit store and telemetry
// exporters are not reopened on reload.
func (c *cli) watchConfig(ctx context.Context, a *app, apply func(*workflow.Service)) {
	if config.ConfigPath(c.flags.ConfigArgs) == "" {
		return
	}
	watcher, err := config.NewWatcher(c.flags.ConfigArgs, config.WithWatchLogger(a.logger))
	if err != nil {
		a.logger.Warn("config hot reload disabled", "error", err)
		return
	}
	watcher.OnChange(func(cfg *config.Config) {
		next, err := a.newService(cfg)
		if err != nil {
			a.logger.Error("config reload rejected", "error", err)
			return
		}
		apply(next)
		a.logger.Info("validation rules reloaded",
			"strict", cfg.Validation.Strict,
			"catalog", cfg.Validation.Catalog,
		)
	})
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("config watcher stopped", "error", err)
		}
	}()
}
