// Package schema models the ordered YAML documents a corpus is made of:
// item payloads and the JSON-Schema-in-YAML documents that govern them.
//
// Mapping order matters here. Relation names are taken from schema property
// order and payload walks follow declaration order, so the same input must
// always produce the same output. Plain map decoding loses that order, which
// is why Value carries its own object representation.
package schema

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is a parsed YAML or JSON value: a mapping, sequence, string,
// number, bool, or null.
type Value struct {
	value interface{}
}

// Object is a mapping that remembers the order its keys were declared in.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject creates an empty ordered mapping.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Set stores a value under key. First writes fix the key's position;
// later writes replace the value in place.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns the keys in declaration order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Null creates a null Value.
func Null() Value {
	return Value{}
}

// String creates a string Value.
func String(s string) Value {
	return Value{value: s}
}

// Number creates a numeric Value.
func Number(n float64) Value {
	return Value{value: n}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{value: b}
}

// Array creates a sequence Value.
func Array(items []Value) Value {
	return Value{value: items}
}

// ObjectValue creates a mapping Value.
func ObjectValue(o *Object) Value {
	return Value{value: o}
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.value == nil
}

// AsString returns the value as a string, if possible.
func (v Value) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// AsNumber returns the value as a number, if possible.
func (v Value) AsNumber() (float64, bool) {
	n, ok := v.value.(float64)
	return n, ok
}

// AsBool returns the value as a boolean, if possible.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// AsArray returns the value as a sequence, if possible.
func (v Value) AsArray() ([]Value, bool) {
	arr, ok := v.value.([]Value)
	return arr, ok
}

// AsObject returns the value as an ordered mapping, if possible.
func (v Value) AsObject() (*Object, bool) {
	o, ok := v.value.(*Object)
	return o, ok
}

// Raw returns the value as plain Go data: map[string]interface{} for
// mappings (declaration order is lost), []interface{} for sequences. This
// is the shape JSON-Schema validators expect.
func (v Value) Raw() interface{} {
	switch val := v.value.(type) {
	case *Object:
		m := make(map[string]interface{}, len(val.keys))
		for _, k := range val.keys {
			m[k] = val.fields[k].Raw()
		}
		return m
	case []Value:
		arr := make([]interface{}, len(val))
		for i, item := range val {
			arr[i] = item.Raw()
		}
		return arr
	default:
		return val
	}
}

// FromYAML parses a single YAML document, preserving mapping order.
func FromYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Null(), err
	}
	if root.Kind == 0 {
		// Empty document.
		return Null(), nil
	}
	return fromNode(&root)
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0])
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := fromNode(n.Content[i+1])
			if err != nil {
				return Null(), err
			}
			obj.Set(n.Content[i].Value, val)
		}
		return ObjectValue(obj), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return Null(), err
			}
			items = append(items, v)
		}
		return Array(items), nil
	case yaml.ScalarNode:
		return fromScalar(n), nil
	case yaml.AliasNode:
		return fromNode(n.Alias)
	}
	return Null(), fmt.Errorf("unsupported yaml node kind %d at line %d", n.Kind, n.Line)
}

// fromScalar maps resolved YAML scalar tags onto Value variants. Scalars
// that fail to parse under their tag (e.g. ".inf") fall back to strings.
func fromScalar(n *yaml.Node) Value {
	switch n.Tag {
	case "!!null":
		return Null()
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return Bool(b)
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return Number(float64(i))
		}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return Number(f)
		}
	}
	return String(n.Value)
}
