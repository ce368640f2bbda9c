// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes workflow validation as Model Context Protocol tools,
// so agents can check a workflow definition before submitting it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/agentdeck/pkg/workflow"
)

// Tool names.
const (
	ToolValidateWorkflow = "validate_workflow"
	ToolListNodeTypes    = "list_node_types"
	ToolDescribeNodeType = "describe_node_type"
)

// ToolHandler handles one tool call with decoded arguments.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// Server wraps the mcp-go server with the AgentDeck validation tools.
type Server struct {
	mcpServer *server.MCPServer
	service   atomic.Pointer[workflow.Service]
}

// NewServer creates an MCP server with the validation tools registered.
func NewServer(name, version string, service *workflow.Service) *Server {
	if service == nil {
		service = workflow.NewService(nil)
	}
	s := &Server{
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}
	s.service.Store(service)
	s.registerTools()
	return s
}

// SetService swaps the validation service used by subsequent calls.
func (s *Server) SetService(service *workflow.Service) {
	if service != nil {
		s.service.Store(service)
	}
}

// RegisterTool registers a tool with the server.
func (s *Server) RegisterTool(tool mcp.Tool, handler ToolHandler) {
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		return handler(ctx, args)
	})
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.RegisterTool(mcp.NewTool(ToolValidateWorkflow,
		mcp.WithDescription("Validate an agent workflow definition and return every problem found."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow document text")),
		mcp.WithString("format", mcp.Description("Document format"), mcp.Enum("json", "yaml")),
	), s.validateWorkflow)

	s.RegisterTool(mcp.NewTool(ToolListNodeTypes,
		mcp.WithDescription("List the node types a workflow may use."),
	), s.listNodeTypes)

	s.RegisterTool(mcp.NewTool(ToolDescribeNodeType,
		mcp.WithDescription("Show the configuration schema of one node type."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type name, such as LLMNode")),
	), s.describeNodeType)
}

func (s *Server) validateWorkflow(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	text, ok := args["workflow"].(string)
	if !ok {
		return mcp.NewToolResultError(`argument "workflow" must be a string`), nil
	}
	format := workflow.FormatJSON
	if f, ok := args["format"].(string); ok {
		format = workflow.ParseFormat(f)
	}
	run, err := s.service.Load().Validate(ctx, workflow.Request{
		Data:   []byte(text),
		Format: format,
		Source: "mcp",
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"run_id": run.ID,
		"result": run.Result,
	})
}

func (s *Server) listNodeTypes(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
	return jsonResult(s.service.Load().Validator().Registry().Types())
}

func (s *Server) describeNodeType(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	name, _ := args["type"].(string)
	def, ok := s.service.Load().Validator().Registry().Lookup(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown node type: %s", name)), nil
	}
	return jsonResult(def)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
