// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema holds the catalog of node types a workflow may use and the
// configuration schema each type declares.
//
// A Registry is immutable once built: lookups return copies and nothing in
// the package mutates a registry after construction, so one instance can be
// shared by every validator and goroutine in the process.
package schema

import (
	"fmt"
	"strings"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
)

// NodeTypeSchema describes the configuration accepted by one node type.
type NodeTypeSchema struct {
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Required    []string               `json:"required,omitempty" yaml:"required,omitempty"`
	Properties  map[string]FieldSchema `json:"properties" yaml:"properties"`
}

// MissingRequired returns the required fields absent from config, in
// declaration order.
func (s NodeTypeSchema) MissingRequired(config jsonvalue.Value) []string {
	var missing []string
	for _, name := range s.Required {
		if !config.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckConfig validates the value shape of every declared property present
// in config. Undeclared keys are accepted.
func (s NodeTypeSchema) CheckConfig(config jsonvalue.Value) []Violation {
	if !config.IsObject() {
		return nil
	}
	return checkObject("", config, nil, s.Properties)
}

func (s NodeTypeSchema) clone() NodeTypeSchema {
	out := NodeTypeSchema{
		Description: s.Description,
		Required:    append([]string(nil), s.Required...),
		Properties:  make(map[string]FieldSchema, len(s.Properties)),
	}
	for name, prop := range s.Properties {
		out.Properties[name] = prop.clone()
	}
	return out
}

func (s NodeTypeSchema) validate(typeName string) error {
	for _, name := range s.Required {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s: empty required field name", typeName)
		}
	}
	for _, name := range sortedKeys(s.Properties) {
		if err := s.Properties[name].validate(typeName + "." + name); err != nil {
			return err
		}
	}
	return nil
}

// Registry maps node-type names to their schemas.
type Registry struct {
	types map[string]NodeTypeSchema
	names []string
}

// NewRegistry builds a registry from the given catalog. The input is copied.
func NewRegistry(types map[string]NodeTypeSchema) (*Registry, error) {
	r := &Registry{types: make(map[string]NodeTypeSchema, len(types))}
	for _, name := range sortedKeys(types) {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("schema registry: empty node type name")
		}
		s := types[name]
		if err := s.validate(name); err != nil {
			return nil, fmt.Errorf("schema registry: %w", err)
		}
		r.types[name] = s.clone()
		r.names = append(r.names, name)
	}
	return r, nil
}

// MustNewRegistry panics if the catalog is invalid. Useful for static tables.
func MustNewRegistry(types map[string]NodeTypeSchema) *Registry {
	r, err := NewRegistry(types)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the schema registered for a node type.
func (r *Registry) Lookup(name string) (NodeTypeSchema, bool) {
	if r == nil {
		return NodeTypeSchema{}, false
	}
	s, ok := r.types[name]
	if !ok {
		return NodeTypeSchema{}, false
	}
	return s.clone(), true
}

// Has reports whether a node type is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.types[name]
	return ok
}

// Types returns the registered node-type names in sorted order.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Extend returns a new registry holding r's types plus extra. Types in
// extra replace same-named types in r.
func (r *Registry) Extend(extra map[string]NodeTypeSchema) (*Registry, error) {
	merged := make(map[string]NodeTypeSchema, r.Len()+len(extra))
	if r != nil {
		for name, s := range r.types {
			merged[name] = s
		}
	}
	for name, s := range extra {
		merged[name] = s
	}
	return NewRegistry(merged)
}

// Catalog returns a copy of every registered schema keyed by type name.
func (r *Registry) Catalog() map[string]NodeTypeSchema {
	out := make(map[string]NodeTypeSchema, r.Len())
	if r == nil {
		return out
	}
	for name, s := range r.types {
		out[name] = s.clone()
	}
	return out
}
