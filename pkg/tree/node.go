// Package tree holds the nested, ordered structure produced by serializing a
// form: maps keep first-insertion key order, lists grow by index or append
// marker, and leaves are typed scalars.
package tree

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formpath/pkg/cast"
)

// Node is a map, list or scalar.
type Node interface {
	// Interface converts the node into plain Go values: map[string]any,
	// []any or the scalar's value.
	Interface() any
	MarshalJSON() ([]byte, error)
	node()
}

// Map is an ordered mapping from string keys to nodes.
type Map struct {
	keys   []string
	values map[string]Node
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Node)}
}

func (*Map) node() {}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in first-insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	n, ok := m.values[key]
	return n, ok
}

// Set stores n under key. Re-setting an existing key keeps its position.
func (m *Map) Set(key string, n Node) {
	if m.values == nil {
		m.values = make(map[string]Node)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = n
}

// Interface converts the map into a map[string]any. Key order is lost.
func (m *Map) Interface() any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		out[key] = nodeInterface(m.values[key])
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, key := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			rawKey, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(rawKey)
			buf.WriteByte(':')
			if err := writeNode(&buf, m.values[key]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// List is an index-addressable sequence of nodes. Unwritten positions are nil
// and encode as JSON null.
type List struct {
	items []Node
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

func (*List) node() {}

// Len returns the list length.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the node at index i, or nil when i is out of range or unset.
func (l *List) At(i int) Node {
	if l == nil || i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Items returns a copy of the list contents.
func (l *List) Items() []Node {
	if l == nil {
		return nil
	}
	return append([]Node(nil), l.items...)
}

// Set writes n at index i, extending the list with nil placeholders when i is
// past the end.
func (l *List) Set(i int, n Node) {
	if i >= len(l.items) {
		l.items = append(l.items, make([]Node, i+1-len(l.items))...)
	}
	l.items[i] = n
}

// Append adds n at the end of the list.
func (l *List) Append(n Node) {
	l.items = append(l.items, n)
}

// Interface converts the list into a []any.
func (l *List) Interface() any {
	out := make([]any, l.Len())
	if l == nil {
		return out
	}
	for i, item := range l.items {
		out[i] = nodeInterface(item)
	}
	return out
}

// MarshalJSON encodes the list as a JSON array.
func (l *List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	if l != nil {
		for i, item := range l.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(&buf, item); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Scalar is a leaf holding a typed value.
type Scalar struct {
	Value cast.Value
}

// Leaf wraps v into a Scalar node.
func Leaf(v cast.Value) Scalar {
	return Scalar{Value: v}
}

func (Scalar) node() {}

// Interface returns the scalar's Go value.
func (s Scalar) Interface() any {
	return s.Value.Interface()
}

// MarshalJSON encodes the scalar.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return s.Value.MarshalJSON()
}

func nodeInterface(n Node) any {
	if n == nil {
		return nil
	}
	return n.Interface()
}

func writeNode(buf *bytes.Buffer, n Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	raw, err := n.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}

func isContainer(n Node) bool {
	switch n.(type) {
	case *Map, *List:
		return true
	default:
		return false
	}
}
