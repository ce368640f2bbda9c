// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "encoding/json"

// Scope locates an issue within the document.
type Scope string

const (
	ScopeParse    Scope = "parse"
	ScopeDocument Scope = "document"
	ScopeNode     Scope = "node"
	ScopeEdge     Scope = "edge"
	ScopeContract Scope = "contract"
)

// Code identifies the rule that produced an issue.
type Code string

const (
	CodeInvalidJSON          Code = "invalid_json"
	CodeInvalidYAML          Code = "invalid_yaml"
	CodeMissingName          Code = "missing_name"
	CodeMissingNodes         Code = "missing_nodes"
	CodeMissingEdges         Code = "missing_edges"
	CodeInvalidDescription   Code = "invalid_description"
	CodeInvalidConfig        Code = "invalid_config"
	CodeMissingNodeID        Code = "missing_node_id"
	CodeMissingNodeType      Code = "missing_node_type"
	CodeMissingNodeConfig    Code = "missing_node_config"
	CodeMissingConfigField   Code = "missing_config_property"
	CodeInvalidConfigField   Code = "invalid_config_property"
	CodeUnknownNodeType      Code = "unknown_node_type"
	CodeDuplicateNodeID      Code = "duplicate_node_id"
	CodeMissingEdgeSource    Code = "missing_edge_source"
	CodeMissingEdgeTarget    Code = "missing_edge_target"
	CodeMissingEdgeData      Code = "missing_edge_data"
	CodeMissingSourceOutput  Code = "missing_source_output"
	CodeMissingTargetInput   Code = "missing_target_input"
	CodeUnknownSourceNode    Code = "unknown_source_node"
	CodeUnknownTargetNode    Code = "unknown_target_node"
	CodeUndeclaredInputField Code = "undeclared_input_field"
)

// Issue is one validation finding. Index is the node or edge position, or
// -1 for document-level and parse issues.
type Issue struct {
	Scope   Scope  `json:"scope"`
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string { return i.Message }

// Result is the outcome of one validation call. Valid is true iff there are
// no issues. Issues are ordered by stage: parse or document, then nodes and
// edges in input order, then contract checks.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
	Stage  Stage   `json:"stage"`
}

// Errors returns the issue messages in order.
func (r Result) Errors() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Message)
	}
	return out
}

// Count returns the number of issues in a scope.
func (r Result) Count(scope Scope) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Scope == scope {
			n++
		}
	}
	return n
}

// MarshalJSON renders the result with the plain message list next to the
// structured issues.
func (r Result) MarshalJSON() ([]byte, error) {
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
		Issues []Issue  `json:"issues"`
		Stage  Stage    `json:"stage"`
	}{
		Valid:  r.Valid,
		Errors: r.Errors(),
		Issues: issues,
		Stage:  r.Stage,
	})
}

// collector accumulates issues across stages.
type collector struct {
	issues []Issue
}

func (c *collector) add(scope Scope, index int, id string, code Code, msg string) {
	c.issues = append(c.issues, Issue{Scope: scope, Index: index, ID: id, Code: code, Message: msg})
}

func (c *collector) result(stage Stage) Result {
	issues := c.issues
	if issues == nil {
		issues = []Issue{}
	}
	return Result{Valid: len(issues) == 0, Issues: issues, Stage: stage}
}
