// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

func checkStructure(c *collector, doc Document, opts Options) {
	if name, ok := doc.Name.Str(); !ok || name == "" {
		c.add(ScopeDocument, -1, "", CodeMissingName, `Missing or invalid "name" field`)
	}
	if !doc.HasNodes {
		c.add(ScopeDocument, -1, "", CodeMissingNodes, `Missing or invalid "nodes" array`)
	}
	if !doc.HasEdges {
		c.add(ScopeDocument, -1, "", CodeMissingEdges, `Missing or invalid "edges" array`)
	}

	if !opts.CheckDocumentTypes {
		return
	}
	if doc.Description.IsDefined() && !doc.Description.IsString() {
		c.add(ScopeDocument, -1, "", CodeInvalidDescription, `Invalid "description" field`)
	}
	if doc.Config.IsDefined() && !doc.Config.IsObject() {
		c.add(ScopeDocument, -1, "", CodeInvalidConfig, `Invalid "config" object`)
	}
}
