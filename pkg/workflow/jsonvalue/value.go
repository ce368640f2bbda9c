// Copyright 2026 © The AgentDeck Authors
// SPDX-License-Identifier: Apache-2.0

// Package jsonvalue provides an ordered, dynamically typed document tree.
//
// Workflow definitions are validated before they are projected into typed
// structures, so the validator needs to inspect values of any shape without
// losing key order or numeric precision. Value is a tagged union over the
// JSON data model plus Undefined, which stands for "key not present".
package jsonvalue

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// Undefined is the zero Kind, returned for absent keys and indexes.
	Undefined Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable document node.
type Value struct {
	kind Kind
	b    bool
	num  float64
	raw  string // number literal or string contents
	arr  []Value
	obj  *Members
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Members holds object members in document order. A repeated key keeps its
// first position and takes the last value, like most JSON decoders.
type Members struct {
	list  []Member
	index map[string]int
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{kind: Null} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, raw: s} }

// NumberValue wraps a float.
func NumberValue(f float64) Value {
	return Value{kind: Number, num: f, raw: formatNumber(f)}
}

// numberLiteral keeps the original literal next to its parsed value.
func numberLiteral(lit string) Value {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !math.IsInf(f, 0) {
		f = math.NaN()
	}
	return Value{kind: Number, num: f, raw: lit}
}

// ArrayValue wraps a list of values.
func ArrayValue(items ...Value) Value {
	return Value{kind: Array, arr: append([]Value(nil), items...)}
}

// ObjectValue builds an object from members in order.
func ObjectValue(members ...Member) Value {
	obj := &Members{index: make(map[string]int, len(members))}
	for _, m := range members {
		obj.set(m.Key, m.Value)
	}
	return Value{kind: Object, obj: obj}
}

func (o *Members) set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.list[i].Value = v
		return
	}
	o.index[key] = len(o.list)
	o.list = append(o.list, Member{Key: key, Value: v})
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsDefined reports whether the value is present at all.
func (v Value) IsDefined() bool { return v.kind != Undefined }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.kind == String }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.kind == Array }

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.kind == Object }

// Str returns the string contents and whether the value is a string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.raw, true
}

// Float returns the numeric value and whether the value is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Boolean returns the boolean value and whether the value is a boolean.
func (v Value) Boolean() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.b, true
}

// Items returns the elements of an array, or nil.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.arr
}

// Len returns the number of array elements or object members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj.list)
	default:
		return 0
	}
}

// Members returns the object members in document order, or nil.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.obj.list
}

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	members := v.Members()
	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Has reports whether an object carries the key.
func (v Value) Has(key string) bool {
	if v.kind != Object {
		return false
	}
	_, ok := v.obj.index[key]
	return ok
}

// Get returns the member value for key. Non-objects and missing keys yield
// an Undefined value, so lookups can be chained.
func (v Value) Get(key string) Value {
	if v.kind != Object {
		return Value{}
	}
	i, ok := v.obj.index[key]
	if !ok {
		return Value{}
	}
	return v.obj.list[i].Value
}

// Index returns the i-th array element or Undefined.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Truthy applies the usual dynamic-language truthiness: undefined, null,
// false, zero, NaN and the empty string are false; everything else is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case Undefined, Null:
		return false
	case Bool:
		return v.b
	case Number:
		return v.num != 0 && !math.IsNaN(v.num)
	case String:
		return v.raw != ""
	default:
		return true
	}
}

// Text renders the value the way it is interpolated into messages.
func (v Value) Text() string {
	switch v.kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return formatNumber(v.num)
	case String:
		return v.raw
	case Array:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			if item.kind == Null || item.kind == Undefined {
				continue
			}
			parts[i] = item.Text()
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// Key returns an identity key for scalar values: two scalars are strictly
// equal iff their keys match. Arrays and objects have no key.
func (v Value) Key() (string, bool) {
	switch v.kind {
	case Undefined, Null, Bool, String:
		return strconv.Itoa(int(v.kind)) + ":" + v.Text(), true
	case Number:
		if math.IsNaN(v.num) {
			return "", false
		}
		return strconv.Itoa(int(v.kind)) + ":" + formatNumber(v.num), true
	default:
		return "", false
	}
}

// StrictEqual compares two values without coercion. Composite values are
// never equal because every parsed container is a distinct instance.
func StrictEqual(a, b Value) bool {
	ka, ok := a.Key()
	if !ok {
		return false
	}
	kb, ok := b.Key()
	return ok && ka == kb
}

// Interface converts the value into plain Go types (map[string]any,
// []any, float64, string, bool, nil). Key order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.num
	case String:
		return v.raw
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj.list))
		for _, m := range v.obj.list {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent drops the zero padding strconv puts in two-digit exponents
// ("1e-07" becomes "1e-7").
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}
