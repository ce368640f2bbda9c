// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements the AgentDeck CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitError   = 2
)

type globalFlags struct {
	ConfigArgs []string
	Timeout    time.Duration
	JSON       bool
	Help       bool
}

// cli carries the process streams so commands can be driven from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global, args, err := parseGlobalFlags(argv)
	if err != nil {
		PrintSimpleError(stderr, err, false)
		return exitError
	}
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, flags: global}
	if global.Help || len(args) == 0 {
		c.printUsage()
		return exitOK
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "validate":
		return c.runValidate(ctx, rest)
	case "node-types":
		return c.runNodeTypes(rest)
	case "serve":
		return c.runServe(ctx, rest)
	case "mcp":
		return c.runMCP(ctx, rest)
	case "create":
		return c.runCreate(ctx, rest)
	case "watch":
		return c.runWatch(ctx, rest)
	case "version":
		fmt.Fprintln(stdout, version)
		return exitOK
	case "help":
		c.printUsage()
		return exitOK
	default:
		return c.fail(NewInvalidArgumentError("command", fmt.Sprintf("unknown command %q", cmd)))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := globalFlags{Timeout: 30 * time.Second}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--strict":
			flags.ConfigArgs = append(flags.ConfigArgs, "--set", "validation.strict=true")
		case arg == "--config" || arg == "--set" || arg == "--profile":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for %s", arg)
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--config="), strings.HasPrefix(arg, "--set="), strings.HasPrefix(arg, "--profile="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		case arg == "--timeout":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for --timeout")
			}
			value, err := time.ParseDuration(args[i+1])
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
			i++
		case strings.HasPrefix(arg, "--timeout="):
			value, err := time.ParseDuration(strings.TrimPrefix(arg, "--timeout="))
			if err != nil {
				return flags, nil, fmt.Errorf("invalid --timeout: %w", err)
			}
			flags.Timeout = value
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stdout, `AgentDeck CLI

Usage:
  agentdeck [global flags] <command> [args]

Global flags:
  --config <path>      Path to config.yaml
  --profile <name>     Overlay config.<name>.yaml on top of --config
  --set key=value      Override config (repeatable)
  --strict             Enable every optional validation check
  --timeout <dur>      Timeout for platform calls (default 30s)
  --json               JSON output

Commands:
  validate <file|->... [--format json|yaml]
  node-types [type]
  serve [--addr :8080]
  mcp
  create <file|-> [--name N] [--description D] [--format json|yaml]
  watch <file>
  version`)
}

// fail prints err and returns the matching exit code.
func (c *cli) fail(err error) int {
	if cliErr, ok := err.(*CLIError); ok {
		cliErr.PrintError(c.stderr, c.flags.JSON)
		return exitError
	}
	PrintSimpleError(c.stderr, err, c.flags.JSON)
	return exitError
}

func (c *cli) printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return
	}
	fmt.Fprintln(c.stdout, string(payload))
}

func (c *cli) newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(c.stdout, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}
