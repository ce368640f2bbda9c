// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"fmt"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
	"github.com/jllopis/agentdeck/pkg/workflow/schema"
)

// idSet holds the scalar node ids of a document.
type idSet map[string]struct{}

func (s idSet) add(v jsonvalue.Value) bool {
	key, ok := v.Key()
	if !ok {
		return true
	}
	if _, dup := s[key]; dup {
		return false
	}
	s[key] = struct{}{}
	return true
}

func (s idSet) has(v jsonvalue.Value) bool {
	key, ok := v.Key()
	if !ok {
		return false
	}
	_, found := s[key]
	return found
}

// checkNodes validates every node and returns the node-id set, or nil when
// the document has no usable nodes array.
func checkNodes(c *collector, doc Document, registry *schema.Registry, opts Options) idSet {
	if !doc.HasNodes {
		return nil
	}
	ids := make(idSet, len(doc.Nodes))
	for _, node := range doc.Nodes {
		i, id := node.Index, node.idString()
		if !node.ID.Truthy() {
			c.add(ScopeNode, i, id, CodeMissingNodeID, fmt.Sprintf(`Node at index %d is missing an "id" field`, i))
		}
		if !node.Type.Truthy() {
			c.add(ScopeNode, i, id, CodeMissingNodeType, fmt.Sprintf(`Node at index %d is missing a "type" field`, i))
		}
		if !node.Config.IsObject() {
			c.add(ScopeNode, i, id, CodeMissingNodeConfig, fmt.Sprintf(`Node at index %d is missing a "config" object`, i))
		}

		if node.Type.Truthy() {
			checkNodeType(c, node, registry, opts)
		}

		unique := ids.add(node.ID)
		if opts.RejectDuplicateIDs && !unique && node.ID.Truthy() {
			c.add(ScopeNode, i, id, CodeDuplicateNodeID, fmt.Sprintf(`Node at index %d has duplicate id: "%s"`, i, node.label()))
		}
	}
	return ids
}

func checkNodeType(c *collector, node NodeDef, registry *schema.Registry, opts Options) {
	i, id := node.Index, node.idString()
	name, isString := node.TypeName()
	if !isString || !registry.Has(name) {
		c.add(ScopeNode, i, id, CodeUnknownNodeType, "Unknown node type: "+node.Type.Text())
		return
	}
	if !node.Config.IsObject() {
		return
	}

	s, _ := registry.Lookup(name)
	for _, field := range s.MissingRequired(node.Config) {
		c.add(ScopeNode, i, id, CodeMissingConfigField,
			fmt.Sprintf(`Node "%s" (%s) is missing required config property: %s`, node.label(), name, field))
	}
	if !opts.CheckConfigTypes {
		return
	}
	for _, v := range s.CheckConfig(node.Config) {
		c.add(ScopeNode, i, id, CodeInvalidConfigField,
			fmt.Sprintf(`Node "%s" (%s) config property "%s" %s`, node.label(), name, v.Path, v.Problem))
	}
}
