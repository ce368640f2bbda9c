// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"fmt"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

// checkContract verifies that edges leaving the first InputNode only read
// fields it declares in input_fields. The check is skipped when there is no
// InputNode or its input_fields is not a list of strings. An InputNode
// without an id matches edges that have no source either.
func checkContract(c *collector, doc Document) {
	if !doc.HasNodes || !doc.HasEdges {
		return
	}
	input, ok := findInputNode(doc.Nodes)
	if !ok {
		return
	}
	declared, ok := inputFields(input)
	if !ok {
		return
	}

	for _, edge := range doc.Edges {
		if !jsonvalue.StrictEqual(edge.Source, input.ID) {
			continue
		}
		out := edge.SourceOutput
		if !out.Truthy() {
			continue
		}
		if name, isString := out.Str(); isString {
			if _, found := declared[name]; found {
				continue
			}
		}
		c.add(ScopeContract, edge.Index, input.idString(), CodeUndeclaredInputField,
			fmt.Sprintf(`Edge from InputNode references field "%s" which is not defined in input_fields`, out.Text()))
	}
}

func findInputNode(nodes []NodeDef) (NodeDef, bool) {
	for _, node := range nodes {
		if name, ok := node.TypeName(); ok && name == schema.TypeInput {
			return node, true
		}
	}
	return NodeDef{}, false
}

func inputFields(node NodeDef) (map[string]struct{}, bool) {
	fields := node.Config.Get("input_fields")
	if !fields.IsArray() {
		return nil, false
	}
	declared := make(map[string]struct{}, fields.Len())
	for _, item := range fields.Items() {
		name, ok := item.Str()
		if !ok {
			return nil, false
		}
		declared[name] = struct{}{}
	}
	return declared, true
}
