// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package agents submits validated workflow definitions to the agent
// platform API.
package agents

import (
	"encoding/json"

	"github.com/jllopis/agentdeck/pkg/errors"
	"github.com/jllopis/agentdeck/pkg/workflow"
	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
)

// CreateWorkflowRequest is the body of POST /api/v1/workflows. Nodes,
// edges and config are carried verbatim from the uploaded document.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges"`
	Config      json.RawMessage `json:"config"`
}

// CreateWorkflowResponse is the platform's answer to a create request.
type CreateWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	Message    string `json:"message,omitempty"`
}

// Overrides are the form values entered alongside the uploaded file.
// Empty values fall back to the document.
type Overrides struct {
	Name        string
	Description string
}

var (
	emptyArray  = json.RawMessage("[]")
	emptyObject = json.RawMessage("{}")
)

// BuildCreateRequest assembles a create request from a workflow document.
// Falsy nodes or edges become [], a falsy config becomes {} and a missing
// description becomes "". Overrides win over the document's name and
// description.
func BuildCreateRequest(data []byte, format workflow.Format, overrides Overrides) (CreateWorkflowRequest, error) {
	var (
		root jsonvalue.Value
		err  error
	)
	if format == workflow.FormatYAML {
		root, err = jsonvalue.ParseYAML(data)
	} else {
		root, err = jsonvalue.ParseJSON(data)
	}
	if err != nil {
		return CreateWorkflowRequest{}, errors.New(errors.CodeInvalidInput, "workflow document is not well-formed", err)
	}
	return requestFromValue(root, overrides)
}

func requestFromValue(root jsonvalue.Value, overrides Overrides) (CreateWorkflowRequest, error) {
	req := CreateWorkflowRequest{
		Name:        overrides.Name,
		Description: overrides.Description,
	}
	if req.Name == "" {
		req.Name = textOrEmpty(root.Get("name"))
	}
	if req.Description == "" {
		req.Description = textOrEmpty(root.Get("description"))
	}

	var err error
	if req.Nodes, err = rawOr(root.Get("nodes"), emptyArray); err != nil {
		return CreateWorkflowRequest{}, err
	}
	if req.Edges, err = rawOr(root.Get("edges"), emptyArray); err != nil {
		return CreateWorkflowRequest{}, err
	}
	if req.Config, err = rawOr(root.Get("config"), emptyObject); err != nil {
		return CreateWorkflowRequest{}, err
	}
	return req, nil
}

func textOrEmpty(v jsonvalue.Value) string {
	if !v.Truthy() {
		return ""
	}
	return v.Text()
}

func rawOr(v jsonvalue.Value, fallback json.RawMessage) (json.RawMessage, error) {
	if !v.Truthy() {
		return fallback, nil
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "encode workflow field", err)
	}
	return raw, nil
}
