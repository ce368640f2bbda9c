// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"

// Document is the projection of a parsed workflow definition. Fields keep
// their raw values so every presence and shape check happens in the
// validator, never during projection.
type Document struct {
	Name        jsonvalue.Value
	Description jsonvalue.Value
	Config      jsonvalue.Value
	// Nodes and Edges are nil when the corresponding key is absent or not
	// an array; HasNodes and HasEdges distinguish that from an empty list.
	Nodes    []NodeDef
	Edges    []EdgeDef
	HasNodes bool
	HasEdges bool
}

// NodeDef is one entry of the nodes array.
type NodeDef struct {
	Index  int
	ID     jsonvalue.Value
	Type   jsonvalue.Value
	Config jsonvalue.Value
}

// EdgeDef is one entry of the edges array.
type EdgeDef struct {
	Index        int
	Source       jsonvalue.Value
	Target       jsonvalue.Value
	Data         jsonvalue.Value
	SourceOutput jsonvalue.Value
	TargetInput  jsonvalue.Value
}

// Project maps a parsed root value onto a Document. A root that is not an
// object projects to a document with every field absent.
func Project(root jsonvalue.Value) Document {
	doc := Document{
		Name:        root.Get("name"),
		Description: root.Get("description"),
		Config:      root.Get("config"),
	}
	if nodes := root.Get("nodes"); nodes.IsArray() {
		doc.HasNodes = true
		doc.Nodes = make([]NodeDef, 0, nodes.Len())
		for i, n := range nodes.Items() {
			doc.Nodes = append(doc.Nodes, NodeDef{
				Index:  i,
				ID:     n.Get("id"),
				Type:   n.Get("type"),
				Config: n.Get("config"),
			})
		}
	}
	if edges := root.Get("edges"); edges.IsArray() {
		doc.HasEdges = true
		doc.Edges = make([]EdgeDef, 0, edges.Len())
		for i, e := range edges.Items() {
			data := e.Get("data")
			doc.Edges = append(doc.Edges, EdgeDef{
				Index:        i,
				Source:       e.Get("source"),
				Target:       e.Get("target"),
				Data:         data,
				SourceOutput: data.Get("sourceOutput"),
				TargetInput:  data.Get("targetInput"),
			})
		}
	}
	return doc
}

// TypeName returns the node type when it is a string.
func (n NodeDef) TypeName() (string, bool) {
	return n.Type.Str()
}

// label is the node id as interpolated into messages.
func (n NodeDef) label() string {
	return n.ID.Text()
}

// idString is the node id for structured issues; empty unless it is a
// non-empty scalar.
func (n NodeDef) idString() string {
	if !n.ID.Truthy() || n.ID.IsArray() || n.ID.IsObject() {
		return ""
	}
	return n.ID.Text()
}
