// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jllopis/agentdeck/pkg/workflow/jsonvalue"
)

func mustParse(t *testing.T, raw string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return v
}

func TestCheckConfigBuiltins(t *testing.T) {
	tests := []struct {
		name   string
		typ    string
		config string
		want   []Violation
	}{
		{
			name:   "valid llm",
			typ:    TypeLLM,
			config: `{"model":"gpt-4o","temperature":0.7,"max_tokens":512,"memory_enabled":true,"unknown":{"x":1}}`,
		},
		{
			name:   "temperature out of range",
			typ:    TypeLLM,
			config: `{"temperature":2.5}`,
			want:   []Violation{{Path: "temperature", Problem: "must be <= 2"}},
		},
		{
			name:   "max tokens not integer",
			typ:    TypeLLM,
			config: `{"max_tokens":1.5}`,
			want:   []Violation{{Path: "max_tokens", Problem: "must be an integer"}},
		},
		{
			name:   "max tokens below minimum",
			typ:    TypeLLM,
			config: `{"max_tokens":0}`,
			want:   []Violation{{Path: "max_tokens", Problem: "must be >= 1"}},
		},
		{
			name:   "tool missing description",
			typ:    TypeLLM,
			config: `{"tools":[{"name":"search"},{"name":1,"description":"d"}]}`,
			want: []Violation{
				{Path: "tools[0]", Problem: "is missing required property: description"},
				{Path: "tools[1].name", Problem: "must be a string"},
			},
		},
		{
			name:   "http method enum",
			typ:    TypeHTTPRequest,
			config: `{"method":"FETCH","verify_ssl":"yes"}`,
			want: []Violation{
				{Path: "method", Problem: "must be one of [GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS]"},
				{Path: "verify_ssl", Problem: "must be a boolean"},
			},
		},
		{
			name:   "input fields must be strings",
			typ:    TypeInput,
			config: `{"input_fields":["a",2]}`,
			want:   []Violation{{Path: "input_fields[1]", Problem: "must be a string"}},
		},
		{
			name:   "transformations object",
			typ:    TypeDataTransform,
			config: `{"transformations":{"rename":{"a":"b"}}}`,
		},
		{
			name:   "transformations array of objects",
			typ:    TypeDataTransform,
			config: `{"transformations":[{"op":"rename"}]}`,
		},
		{
			name:   "transformations wrong shape",
			typ:    TypeDataTransform,
			config: `{"transformations":"rename"}`,
			want:   []Violation{{Path: "transformations", Problem: "does not match any allowed shape (object | array of object)"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Default().Lookup(tt.typ)
			if !ok {
				t.Fatalf("type %s not registered", tt.typ)
			}
			got := s.CheckConfig(mustParse(t, tt.config))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckEnumKind(t *testing.T) {
	f := FieldSchema{Kind: KindEnum, Enum: []string{"a", "b"}}
	if got := f.Check("mode", jsonvalue.StringValue("a")); len(got) != 0 {
		t.Fatalf("unexpected violations: %v", got)
	}
	want := []Violation{{Path: "mode", Problem: "must be one of [a, b]"}}
	if diff := cmp.Diff(want, f.Check("mode", jsonvalue.NumberValue(1))); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, f.Check("mode", jsonvalue.StringValue("c"))); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckOneOfAmbiguous(t *testing.T) {
	f := FieldSchema{Kind: KindOneOf, OneOf: []FieldSchema{{Kind: KindNumber}, {Kind: KindInteger}}}
	got := f.Check("n", jsonvalue.NumberValue(3))
	want := []Violation{{Path: "n", Problem: "matches more than one allowed shape (number | integer)"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckAnyAcceptsEverything(t *testing.T) {
	f := FieldSchema{Kind: KindAny}
	for _, raw := range []string{`null`, `1`, `"s"`, `[]`, `{}`, `false`} {
		if got := f.Check("v", mustParse(t, raw)); len(got) != 0 {
			t.Fatalf("%s: unexpected violations %v", raw, got)
		}
	}
}
