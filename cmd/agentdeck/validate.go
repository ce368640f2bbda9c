// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jllopis/agentdeck/pkg/workflow"
)

// fileResult is the JSON shape of one validated file.
type fileResult struct {
	Path   string          `json:"path"`
	RunID  string          `json:"run_id"`
	Name   string          `json:"name,omitempty"`
	Result workflow.Result `json:"result"`
}

func (c *cli) runValidate(ctx context.Context, args []string) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(c.stderr)
	format := cmd.String("format", "", "Document format: json or yaml (default from extension)")
	paths, err := parseInterspersed(cmd, args)
	if err != nil {
		return c.fail(NewInvalidArgumentError("validate", err.Error()))
	}
	if len(paths) == 0 {
		return c.fail(NewInvalidArgumentError("validate", "usage: agentdeck validate <file|->... [--format json|yaml]"))
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

	results := make([]fileResult, 0, len(paths))
	for _, path := range paths {
		data, err := c.readInput(path)
		if err != nil {
			return c.fail(NewReadError(err, path))
		}
		run, err := svc.Validate(ctx, workflow.Request{
			Data:   data,
			Format: inputFormat(*format, path),
			Source: "cli",
		})
		if err != nil {
			return c.fail(err)
		}
		results = append(results, fileResult{Path: path, RunID: run.ID, Name: run.Name, Result: run.Result})
	}

	if c.flags.JSON {
		if len(results) == 1 {
			c.printJSON(results[0])
		} else {
			c.printJSON(results)
		}
	} else {
		for _, r := range results {
			c.printFileResult(r)
		}
	}

	for _, r := range results {
		if !r.Result.Valid {
			return exitInvalid
		}
	}
	return exitOK
}

func (c *cli) printFileResult(r fileResult) {
	label := r.Path
	if label == "-" {
		label = "<stdin>"
	}
	if r.Result.Valid {
		fmt.Fprintf(c.stdout, "✓ %s: valid\n", label)
		return
	}
	noun := "errors"
	if len(r.Result.Issues) == 1 {
		noun = "error"
	}
	fmt.Fprintf(c.stdout, "✗ %s: %d %s\n", label, len(r.Result.Issues), noun)
	for _, msg := range r.Result.Errors() {
		fmt.Fprintf(c.stdout, "  - %s\n", msg)
	}
}

// readInput reads a file, or stdin for "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}

// inputFormat prefers an explicit --format, then the file extension.
func inputFormat(explicit, path string) workflow.Format {
	if explicit != "" {
		return workflow.ParseFormat(explicit)
	}
	return workflow.FormatFromPath(path)
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}
