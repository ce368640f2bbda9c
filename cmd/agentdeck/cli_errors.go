// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jllopis/agentdeck/pkg/errors"
)

// CLIError wraps an *errors.Error with CLI-specific formatting and hints.
type CLIError struct {
	Err  *errors.Error
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(e *errors.Error, hint string) *CLIError {
	return &CLIError{
		Err:  e,
		Hint: hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.Err == nil {
		return "unknown error"
	}

	msg := e.Err.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// Unwrap exposes the wrapped error.
func (e *CLIError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// PrintError prints the error with appropriate formatting.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":    e.Err.Code,
				"message": e.Err.Message,
				"hint":    e.Hint,
			},
		})
		fmt.Fprintln(w, string(payload))
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(e.Err.Code), e.Err.Message)
	if e.Err.Err != nil {
		fmt.Fprintf(w, "  Cause: %v\n", e.Err.Err)
	}
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

// WrapPlatformError attaches a hint matching the platform failure.
func WrapPlatformError(err error, baseURL string) *CLIError {
	e := errors.As(err)
	switch e.Code {
	case errors.CodeUnauthorized:
		return NewCLIError(e, "check api.token or AGENTDECK_API_TOKEN")
	case errors.CodeUpstream:
		return NewCLIError(e, fmt.Sprintf("check that the platform is reachable at %s", baseURL))
	case errors.CodeTimeout:
		return NewCLIError(e, "try increasing timeout with --timeout flag or check platform health")
	case errors.CodeValidationFailed:
		return NewCLIError(e, "run 'agentdeck validate' on the file to see every problem")
	default:
		return NewCLIError(e, "")
	}
}

// NewNotFoundError creates a not found error with a hint naming the
// command that lists the resource.
func NewNotFoundError(resource, name, listCommand string) *CLIError {
	e := errors.New(errors.CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, name), nil).
		WithContext("resource", resource).
		WithContext("name", name)
	return NewCLIError(e, fmt.Sprintf("run 'agentdeck %s' to list the available ones", listCommand))
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	e := errors.New(errors.CodeInvalidInput, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason)
	return NewCLIError(e, "run 'agentdeck help' for usage information")
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	e := errors.New(errors.CodeInvalidInput, "configuration error", err).
		WithContext("config_path", configPath)

	hint := "check your configuration file syntax"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(e, hint)
}

// NewReadError creates an error for an unreadable workflow file.
func NewReadError(err error, path string) *CLIError {
	e := errors.New(errors.CodeInvalidInput, "cannot read workflow", err).
		WithContext("path", path)
	return NewCLIError(e, "check that the file exists and is readable")
}

// PrintSimpleError prints a simple error message (for non-CLIError cases).
func PrintSimpleError(w io.Writer, err error, asJSON bool) {
	if asJSON {
		payload, _ := json.Marshal(map[string]any{
			"error": map[string]any{"code": errors.As(err).Code, "message": err.Error()},
		})
		fmt.Fprintln(w, string(payload))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeInvalidInput:
		return "Invalid Input"
	case errors.CodeValidationFailed:
		return "Validation Failed"
	case errors.CodeNotFound:
		return "Not Found"
	case errors.CodeUnauthorized:
		return "Unauthorized"
	case errors.CodeUpstream:
		return "Platform Error"
	case errors.CodeTimeout:
		return "Timeout"
	case errors.CodeRateLimit:
		return "Rate Limited"
	default:
		return string(code)
	}
}
