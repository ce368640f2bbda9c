// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/jllopis/agentdeck/pkg/watch"
	"github.com/jllopis/agentdeck/pkg/workflow"
)

// runWatch revalidates a workflow file every time it is written, until
// interrupted.
func (c *cli) runWatch(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-" {
		return c.fail(NewInvalidArgumentError("watch", "usage: agentdeck watch <file>"))
	}
	path := args[0]

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

	handler := func(ctx context.Context, p string) {
		data, err := c.readInput(p)
		if err != nil {
			a.logger.Warn("cannot read workflow", "path", p, "error", err)
			return
		}
		run, err := svc.Validate(ctx, workflow.Request{Data: data, Format: workflow.FormatFromPath(p), Source: "watch"})
		if err != nil {
			return
		}
		r := fileResult{Path: path, RunID: run.ID, Name: run.Name, Result: run.Result}
		if c.flags.JSON {
			c.printJSON(r)
			return
		}
		c.printFileResult(r)
	}

	w, err := watch.New(path, handler, watch.WithLogger(a.logger), watch.WithInitialRun())
	if err != nil {
		return c.fail(NewInvalidArgumentError("watch", err.Error()))
	}
	if err := w.Run(ctx); err != nil {
		return c.fail(NewReadError(err, path))
	}
	return exitOK
}
