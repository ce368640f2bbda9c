// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const maxDepth = 10000

// ParseError reports a document that is not well-formed. Its message is the
// underlying decoder message, without any prefix.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "parse error"
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseJSON decodes a JSON document into a Value, keeping key order and
// number literals. Trailing data after the top-level value is an error.
func ParseJSON(data []byte) (Value, error) {
	// Validate first so the error carries the decoder's positional message.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, &ParseError{Format: "json", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, &ParseError{Format: "json", Err: err}
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Members{index: make(map[string]int)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				member, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				obj.set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Object, obj: obj}, nil
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Array, arr: items}, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case json.Number:
		return numberLiteral(t.String()), nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case nil:
		return NullValue(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// ParseYAML decodes a YAML document into a Value. Only the first document
// of a stream is used; an empty document yields null.
func ParseYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, &ParseError{Format: "yaml", Err: err}
	}
	v, err := fromYAML(&doc, 0)
	if err != nil {
		return Value{}, &ParseError{Format: "yaml", Err: err}
	}
	return v, nil
}

func fromYAML(n *yaml.Node, depth int) (Value, error) {
	if n == nil {
		return NullValue(), nil
	}
	if depth > maxDepth {
		return Value{}, fmt.Errorf("yaml: document nesting exceeds %d levels", maxDepth)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NullValue(), nil
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromYAML(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: Array, arr: items}, nil
	case yaml.MappingNode:
		obj := &Members{index: make(map[string]int)}
		var merges []Value
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			val, err := fromYAML(valNode, depth+1)
			if err != nil {
				return Value{}, err
			}
			if keyNode.ShortTag() == "!!merge" {
				merges = append(merges, val)
				continue
			}
			obj.set(keyNode.Value, val)
		}
		for _, merged := range merges {
			sources := []Value{merged}
			if merged.kind == Array {
				sources = merged.arr
			}
			for _, src := range sources {
				for _, m := range src.Members() {
					if _, exists := obj.index[m.Key]; !exists {
						obj.set(m.Key, m.Value)
					}
				}
			}
		}
		return Value{kind: Object, obj: obj}, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return Value{}, fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NullValue(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return NumberValue(f), nil
	default:
		return StringValue(n.Value), nil
	}
}
