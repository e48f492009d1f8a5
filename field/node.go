// Package field provides a typed view over decoded JSON used for the CEK
// request envelope, the session and the context objects.
package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the JSON type held by a Node.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a single JSON value. The zero Node is Absent.
//
// Object nodes share their backing map, so a Set through one copy of a Node is
// visible through every other copy and through parent nodes.
type Node struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Node
	obj  map[string]Node
}

// Absent is returned by lookups of keys that do not exist.
var Absent = Node{}

// Parse decodes raw JSON into a Node tree.
func Parse(raw []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("field: decode: %w", err)
	}
	if dec.More() {
		return Node{}, errors.New("field: decode: trailing data after JSON value")
	}
	return FromValue(v)
}

// FromValue wraps a decoded Go value. Nested maps are wrapped recursively.
func FromValue(v any) (Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Node{kind: KindNumber, num: t}, nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Node{kind: KindNumber, num: json.Number(strconv.Itoa(t))}, nil
	case int64:
		return Node{kind: KindNumber, num: json.Number(strconv.FormatInt(t, 10))}, nil
	case []any:
		arr := make([]Node, 0, len(t))
		for i, item := range t {
			n, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("field: index %d: %w", i, err)
			}
			arr = append(arr, n)
		}
		return Node{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(map[string]Node, len(t))
		for k, item := range t {
			n, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("field: key %q: %w", k, err)
			}
			obj[k] = n
		}
		return Node{kind: KindObject, obj: obj}, nil
	default:
		return Node{}, fmt.Errorf("field: unsupported value type %T", v)
	}
}

// Null returns a JSON null node.
func Null() Node { return Node{kind: KindNull} }

// Bool returns a boolean node.
func Bool(b bool) Node { return Node{kind: KindBool, b: b} }

// String returns a string node.
func String(s string) Node { return Node{kind: KindString, str: s} }

// Number returns a numeric node.
func Number(f float64) Node {
	return Node{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'f', -1, 64))}
}

// Object returns an empty object node.
func Object() Node { return Node{kind: KindObject, obj: map[string]Node{}} }

func (n Node) Kind() Kind      { return n.kind }
func (n Node) IsAbsent() bool  { return n.kind == KindAbsent }
func (n Node) IsNull() bool    { return n.kind == KindNull }
func (n Node) IsObject() bool  { return n.kind == KindObject }
func (n Node) IsMissing() bool { return n.kind == KindAbsent || n.kind == KindNull }

// Get is subscript access: it reports whether key exists on an object node.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindObject {
		return Absent, false
	}
	v, ok := n.obj[key]
	return v, ok
}

// Field is attribute-style access. Missing keys and non-object receivers
// yield Absent instead of failing.
func (n Node) Field(key string) Node {
	v, _ := n.Get(key)
	return v
}

// Path walks nested objects, returning Absent as soon as a key is missing.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Field(k)
		if cur.IsAbsent() {
			return Absent
		}
	}
	return cur
}

// Set writes key on an object node. It fails on any other kind.
func (n Node) Set(key string, value any) error {
	if n.kind != KindObject {
		return fmt.Errorf("field: set %q on %s node", key, n.kind)
	}
	v, err := FromValue(value)
	if err != nil {
		return err
	}
	n.obj[key] = v
	return nil
}

// Keys returns object keys in sorted order.
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(n.obj))
	for k := range n.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len is the number of elements of an array or keys of an object.
func (n Node) Len() int {
	switch n.kind {
	case KindArray:
		return len(n.arr)
	case KindObject:
		return len(n.obj)
	default:
		return 0
	}
}

// Index returns the i-th array element or Absent.
func (n Node) Index(i int) Node {
	if n.kind != KindArray || i < 0 || i >= len(n.arr) {
		return Absent
	}
	return n.arr[i]
}

// AsString returns the string value and whether the node is a string.
func (n Node) AsString() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.str, true
}

// AsBool returns the boolean value and whether the node is a bool.
func (n Node) AsBool() (bool, bool) {
	if n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the numeric value and whether the node is a number.
func (n Node) AsNumber() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	f, err := n.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text is the string value for strings and the JSON literal for other scalars.
// Arrays, objects and absent nodes report false.
func (n Node) Text() (string, bool) {
	switch n.kind {
	case KindString:
		return n.str, true
	case KindNumber:
		return n.num.String(), true
	case KindBool:
		return strconv.FormatBool(n.b), true
	case KindNull:
		return "null", true
	default:
		return "", false
	}
}

// Value converts the node back to plain Go values: nil, bool, json.Number,
// string, []any and map[string]any. Numbers keep their literal text so large
// integers survive a marshal round trip.
func (n Node) Value() any {
	switch n.kind {
	case KindBool:
		return n.b
	case KindNumber:
		return n.num
	case KindString:
		return n.str
	case KindArray:
		out := make([]any, len(n.arr))
		for i, item := range n.arr {
			out[i] = item.Value()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.obj))
		for k, item := range n.obj {
			out[k] = item.Value()
		}
		return out
	default:
		return nil
	}
}

// Map returns the object's entries as plain Go values, or an empty map for
// any other kind.
func (n Node) Map() map[string]any {
	if m, ok := n.Value().(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func (n Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindAbsent, KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(n.b)
	case KindNumber:
		return []byte(n.num.String()), nil
	case KindString:
		return json.Marshal(n.str)
	case KindArray:
		return json.Marshal(n.arr)
	default:
		return json.Marshal(n.obj)
	}
}

func (n *Node) UnmarshalJSON(raw []byte) error {
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
