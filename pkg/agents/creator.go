// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"strings"

	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/telemetry"
	"github.com/jllopis/agentdeck/pkg/workflow"
)

// Platform is the part of the platform API the Creator needs.
type Platform interface {
	CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (CreateWorkflowResponse, error)
}

// Creator validates a workflow document and submits it only when it is
// valid.
type Creator struct {
	service  *workflow.Service
	platform Platform
}

// NewCreator returns a Creator. A nil service validates with the default
// registry and no observability.
func NewCreator(service *workflow.Service, platform Platform) *Creator {
	if service == nil {
		service = workflow.NewService(nil)
	}
	return &Creator{service: service, platform: platform}
}

// Submission is the outcome of a create call.
type Submission struct {
	Run      workflow.Run
	Request  CreateWorkflowRequest
	Response CreateWorkflowResponse
}

// Create validates data and, when it is valid, submits it. An invalid
// document yields a VALIDATION_FAILED error whose context lists every
// validation message; the returned Submission still carries the Run.
func (c *Creator) Create(ctx context.Context, data []byte, format workflow.Format, overrides Overrides) (Submission, error) {
	run, err := c.service.Validate(ctx, workflow.Request{Data: data, Format: format, Source: "create"})
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{Run: run}
	if !run.Result.Valid {
		msgs := run.Result.Errors()
		return sub, errors.New(errors.CodeValidationFailed, "workflow validation failed: "+strings.Join(msgs, ", "), nil).
			WithContext("run_id", run.ID).
			WithContext("errors", msgs)
	}

	sub.Request, err = BuildCreateRequest(data, format, overrides)
	if err != nil {
		return sub, err
	}
	if c.platform == nil {
		return sub, errors.New(errors.CodeInternal, "no platform client configured", nil)
	}
	ctx = telemetry.WithRunID(ctx, run.ID)
	sub.Response, err = c.platform.CreateWorkflow(ctx, sub.Request)
	if err != nil {
		return sub, err
	}
	return sub, nil
}
