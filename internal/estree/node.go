// Package estree holds the tagged syntax tree shared by the parser adapter,
// the walker, the printer and the CommonJS rewrite. Nodes follow the ESTree
// shape: every node carries a "type" tag plus an ordered list of fields.
package estree

import "sort"

// A field value is one of: *Node, []*Node (nil entries are array holes),
// string, float64, bool, nil, or []interface{} for arrays of scalars.
type Field struct {
	Key   string
	Value interface{}
}

// Nodes never point back at their parent. A node with an empty Type is a
// plain record such as "TemplateElement.value" or "Literal.regex" and is not
// treated as a syntax node by traversals.
type Node struct {
	Type   string
	Fields []Field
}

func New(typ string, fields ...Field) *Node {
	return &Node{Type: typ, Fields: fields}
}

func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func (n *Node) index(key string) int {
	for i, f := range n.Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func (n *Node) Has(key string) bool {
	return n != nil && n.index(key) != -1
}

func (n *Node) Get(key string) interface{} {
	if n == nil {
		return nil
	}
	if i := n.index(key); i != -1 {
		return n.Fields[i].Value
	}
	return nil
}

// Set overwrites an existing field in place or appends a new one, so the
// traversal order of existing fields never changes.
func (n *Node) Set(key string, value interface{}) {
	if i := n.index(key); i != -1 {
		n.Fields[i].Value = value
		return
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

func (n *Node) Delete(key string) {
	if i := n.index(key); i != -1 {
		n.Fields = append(n.Fields[:i], n.Fields[i+1:]...)
	}
}

func (n *Node) Child(key string) *Node {
	child, _ := n.Get(key).(*Node)
	return child
}

func (n *Node) Children(key string) []*Node {
	children, _ := n.Get(key).([]*Node)
	return children
}

func (n *Node) Str(key string) string {
	s, _ := n.Get(key).(string)
	return s
}

func (n *Node) Bool(key string) bool {
	b, _ := n.Get(key).(bool)
	return b
}

func (n *Node) Num(key string) float64 {
	f, _ := n.Get(key).(float64)
	return f
}

// Is reports whether n is a node of one of the given types.
func (n *Node) Is(types ...string) bool {
	if n == nil {
		return false
	}
	for _, t := range types {
		if n.Type == t {
			return true
		}
	}
	return false
}

// Name returns the name of an Identifier or PrivateIdentifier node and the
// empty string for anything else.
func (n *Node) Name() string {
	if n.Is("Identifier", "PrivateIdentifier") {
		return n.Str("name")
	}
	return ""
}

func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Type: n.Type, Fields: make([]Field, len(n.Fields))}
	for i, f := range n.Fields {
		clone.Fields[i] = Field{Key: f.Key, Value: cloneValue(f.Value)}
	}
	return clone
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case *Node:
		return v.Clone()
	case []*Node:
		list := make([]*Node, len(v))
		for i, item := range v {
			list[i] = item.Clone()
		}
		return list
	case []interface{}:
		list := make([]interface{}, len(v))
		for i, item := range v {
			list[i] = cloneValue(item)
		}
		return list
	default:
		return v
	}
}

var positionKeys = map[string]bool{
	"start": true,
	"end":   true,
	"loc":   true,
	"range": true,
}

// StripPositions removes location metadata from the whole subtree. Nothing
// in this module needs positions, but trees decoded from other tools
// usually carry them.
func (n *Node) StripPositions() {
	if n == nil {
		return
	}
	fields := n.Fields[:0]
	for _, f := range n.Fields {
		if positionKeys[f.Key] {
			continue
		}
		switch v := f.Value.(type) {
		case *Node:
			v.StripPositions()
		case []*Node:
			for _, item := range v {
				item.StripPositions()
			}
		}
		fields = append(fields, f)
	}
	n.Fields = fields
}

// Equal compares two trees structurally, ignoring position metadata and
// field order.
func Equal(a *Node, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type {
		return false
	}
	ak := significantKeys(a)
	bk := significantKeys(b)
	if len(ak) != len(bk) {
		return false
	}
	for i, key := range ak {
		if bk[i] != key || !equalValue(a.Get(key), b.Get(key)) {
			return false
		}
	}
	return true
}

func significantKeys(n *Node) []string {
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		if !positionKeys[f.Key] {
			keys = append(keys, f.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

func isNilValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *Node:
		return v == nil
	}
	return false
}

func equalValue(a interface{}, b interface{}) bool {
	if isNilValue(a) || isNilValue(b) {
		return isNilValue(a) && isNilValue(b)
	}
	switch av := a.(type) {
	case *Node:
		bv, ok := b.(*Node)
		return ok && Equal(av, bv)
	case []*Node:
		bv, ok := b.([]*Node)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValue(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
