// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/jllopis/agentdeck/pkg/agents"
)

func (c *cli) runCreate(ctx context.Context, args []string) int {
	cmd := flag.NewFlagSet("create", flag.ContinueOnError)
	cmd.SetOutput(c.stderr)
	name := cmd.String("name", "", "Agent name (default: the document name)")
	description := cmd.String("description", "", "Agent description (default: the document description)")
	format := cmd.String("format", "", "Document format: json or yaml (default from extension)")
	paths, err := parseInterspersed(cmd, args)
	if err != nil {
		return c.fail(NewInvalidArgumentError("create", err.Error()))
	}
	if len(paths) != 1 {
		return c.fail(NewInvalidArgumentError("create", "usage: agentdeck create <file|-> [--name N] [--description D]"))
	}
	path := paths[0]

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

	data, err := c.readInput(path)
	if err != nil {
		return c.fail(NewReadError(err, path))
	}

	ctx, cancel := context.WithTimeout(ctx, c.flags.Timeout)
	defer cancel()
	creator := agents.NewCreator(svc, a.newPlatformClient(c.flags.Timeout))
	sub, err := creator.Create(ctx, data, inputFormat(*format, path), agents.Overrides{
		Name:        *name,
		Description: *description,
	})
	if err != nil {
		if !sub.Run.Result.Valid && sub.Run.ID != "" {
			if c.flags.JSON {
				c.printJSON(fileResult{Path: path, RunID: sub.Run.ID, Name: sub.Run.Name, Result: sub.Run.Result})
			} else {
				c.printFileResult(fileResult{Path: path, Result: sub.Run.Result})
			}
			return exitInvalid
		}
		return c.fail(WrapPlatformError(err, cfg.API.BaseURL))
	}

	if c.flags.JSON {
		c.printJSON(map[string]any{
			"run_id":      sub.Run.ID,
			"workflow_id": sub.Response.WorkflowID,
			"name":        sub.Request.Name,
		})
		return exitOK
	}
	fmt.Fprintf(c.stdout, "created workflow %s (%s)\n", sub.Response.WorkflowID, sub.Request.Name)
	return exitOK
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
