// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "fmt"

// checkEdges reports missing edge fields for every edge first, then, when
// ids is non-nil, endpoints that name no existing node.
func checkEdges(c *collector, doc Document, ids idSet) {
	for _, edge := range doc.Edges {
		checkEdgeFields(c, edge)
	}
	if ids == nil {
		return
	}
	for _, edge := range doc.Edges {
		checkEdgeRefs(c, edge, ids)
	}
}

func checkEdgeFields(c *collector, edge EdgeDef) {
	i := edge.Index
	if !edge.Source.Truthy() {
		c.add(ScopeEdge, i, "", CodeMissingEdgeSource, fmt.Sprintf(`Edge at index %d is missing a "source" field`, i))
	}
	if !edge.Target.Truthy() {
		c.add(ScopeEdge, i, "", CodeMissingEdgeTarget, fmt.Sprintf(`Edge at index %d is missing a "target" field`, i))
	}
	if !edge.Data.IsObject() {
		c.add(ScopeEdge, i, "", CodeMissingEdgeData, fmt.Sprintf(`Edge at index %d is missing a "data" object`, i))
		return
	}
	if !edge.SourceOutput.Truthy() {
		c.add(ScopeEdge, i, "", CodeMissingSourceOutput, fmt.Sprintf(`Edge at index %d is missing a "data.sourceOutput" field`, i))
	}
	if !edge.TargetInput.Truthy() {
		c.add(ScopeEdge, i, "", CodeMissingTargetInput, fmt.Sprintf(`Edge at index %d is missing a "data.targetInput" field`, i))
	}
}

func checkEdgeRefs(c *collector, edge EdgeDef, ids idSet) {
	i := edge.Index
	if edge.Source.Truthy() && !ids.has(edge.Source) {
		c.add(ScopeEdge, i, "", CodeUnknownSourceNode,
			fmt.Sprintf(`Edge at index %d references non-existent source node: "%s"`, i, edge.Source.Text()))
	}
	if edge.Target.Truthy() && !ids.has(edge.Target) {
		c.add(ScopeEdge, i, "", CodeUnknownTargetNode,
			fmt.Sprintf(`Edge at index %d references non-existent target node: "%s"`, i, edge.Target.Text()))
	}
}
