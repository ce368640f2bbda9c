// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
)

// Kind is the value shape a FieldSchema accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindEnum    Kind = "enum"
	KindOneOf   Kind = "oneOf"
	KindAny     Kind = "any"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindInteger, KindNumber, KindBoolean, KindObject,
		KindArray, KindEnum, KindOneOf, KindAny:
		return true
	}
	return false
}

// FieldSchema describes one configuration property.
type FieldSchema struct {
	Kind        Kind                   `json:"type" yaml:"type"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []string               `json:"enum,omitempty" yaml:"enum,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Items       *FieldSchema           `json:"items,omitempty" yaml:"items,omitempty"`
	Required    []string               `json:"required,omitempty" yaml:"required,omitempty"`
	Properties  map[string]FieldSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	OneOf       []FieldSchema          `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
}

// Violation is a single mismatch between a value and its schema.
type Violation struct {
	Path    string
	Problem string
}

func (v Violation) String() string {
	return fmt.Sprintf("%q %s", v.Path, v.Problem)
}

// Check validates v against the field schema. path names the value in the
// returned violations.
func (f FieldSchema) Check(path string, v jsonvalue.Value) []Violation {
	if problem := f.kindProblem(v); problem != "" {
		return []Violation{{Path: path, Problem: problem}}
	}

	var out []Violation
	if len(f.Enum) > 0 {
		if s, ok := v.Str(); !ok || !containsString(f.Enum, s) {
			out = append(out, Violation{Path: path, Problem: "must be one of [" + strings.Join(f.Enum, ", ") + "]"})
		}
	}
	if n, ok := v.Float(); ok {
		if f.Minimum != nil && n < *f.Minimum {
			out = append(out, Violation{Path: path, Problem: "must be >= " + formatBound(*f.Minimum)})
		}
		if f.Maximum != nil && n > *f.Maximum {
			out = append(out, Violation{Path: path, Problem: "must be <= " + formatBound(*f.Maximum)})
		}
	}
	if f.Items != nil && v.IsArray() {
		for i, item := range v.Items() {
			out = append(out, f.Items.Check(path+"["+strconv.Itoa(i)+"]", item)...)
		}
	}
	if v.IsObject() {
		out = append(out, checkObject(path, v, f.Required, f.Properties)...)
	}
	if len(f.OneOf) > 0 {
		matches := 0
		for _, alt := range f.OneOf {
			if len(alt.Check(path, v)) == 0 {
				matches++
			}
		}
		switch {
		case matches == 0:
			out = append(out, Violation{Path: path, Problem: "does not match any allowed shape (" + f.shapes() + ")"})
		case matches > 1:
			out = append(out, Violation{Path: path, Problem: "matches more than one allowed shape (" + f.shapes() + ")"})
		}
	}
	return out
}

func (f FieldSchema) kindProblem(v jsonvalue.Value) string {
	switch f.Kind {
	case KindString:
		if !v.IsString() {
			return "must be a string"
		}
	case KindInteger:
		n, ok := v.Float()
		if !ok || n != math.Trunc(n) || math.IsInf(n, 0) {
			return "must be an integer"
		}
	case KindNumber:
		if _, ok := v.Float(); !ok {
			return "must be a number"
		}
	case KindBoolean:
		if _, ok := v.Boolean(); !ok {
			return "must be a boolean"
		}
	case KindObject:
		if !v.IsObject() {
			return "must be an object"
		}
	case KindArray:
		if !v.IsArray() {
			return "must be an array"
		}
	case KindEnum:
		if !v.IsString() {
			return "must be one of [" + strings.Join(f.Enum, ", ") + "]"
		}
	}
	return ""
}

func (f FieldSchema) shapes() string {
	names := make([]string, 0, len(f.OneOf))
	for _, alt := range f.OneOf {
		name := string(alt.Kind)
		if alt.Kind == KindArray && alt.Items != nil {
			name = "array of " + string(alt.Items.Kind)
		}
		names = append(names, name)
	}
	return strings.Join(names, " | ")
}

func checkObject(path string, v jsonvalue.Value, required []string, props map[string]FieldSchema) []Violation {
	var out []Violation
	for _, name := range required {
		if !v.Has(name) {
			out = append(out, Violation{Path: path, Problem: "is missing required property: " + name})
		}
	}
	if len(props) == 0 {
		return out
	}
	// Walk in document order so violations are deterministic.
	for _, m := range v.Members() {
		field, ok := props[m.Key]
		if !ok {
			continue
		}
		out = append(out, field.Check(joinPath(path, m.Key), m.Value)...)
	}
	return out
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (f FieldSchema) validate(path string) error {
	if !f.Kind.Valid() {
		return fmt.Errorf("%s: unknown field type %q", path, f.Kind)
	}
	if f.Kind == KindEnum && len(f.Enum) == 0 {
		return fmt.Errorf("%s: enum field declares no values", path)
	}
	if f.Kind == KindOneOf && len(f.OneOf) == 0 {
		return fmt.Errorf("%s: oneOf field declares no alternatives", path)
	}
	if f.Minimum != nil && f.Maximum != nil && *f.Minimum > *f.Maximum {
		return fmt.Errorf("%s: minimum %s exceeds maximum %s", path, formatBound(*f.Minimum), formatBound(*f.Maximum))
	}
	if f.Items != nil {
		if err := f.Items.validate(path + "[]"); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(f.Properties) {
		if err := f.Properties[name].validate(joinPath(path, name)); err != nil {
			return err
		}
	}
	for i, alt := range f.OneOf {
		if err := alt.validate(fmt.Sprintf("%s.oneOf[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (f FieldSchema) clone() FieldSchema {
	out := f
	out.Enum = append([]string(nil), f.Enum...)
	out.Required = append([]string(nil), f.Required...)
	if f.Minimum != nil {
		min := *f.Minimum
		out.Minimum = &min
	}
	if f.Maximum != nil {
		max := *f.Maximum
		out.Maximum = &max
	}
	if f.Items != nil {
		items := f.Items.clone()
		out.Items = &items
	}
	if f.Properties != nil {
		out.Properties = make(map[string]FieldSchema, len(f.Properties))
		for name, prop := range f.Properties {
			out.Properties[name] = prop.clone()
		}
	}
	if f.OneOf != nil {
		out.OneOf = make([]FieldSchema, len(f.OneOf))
		for i, alt := range f.OneOf {
			out.OneOf[i] = alt.clone()
		}
	}
	return out
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
