package format

import (
	"strconv"
	"strings"
)

type nodeKind int

const (
	objectNode nodeKind = iota
	arrayNode
	leafNode
)

// Node is the ordered intermediate representation every renderer walks.
// Object fields keep insertion order.
type Node struct {
	Name string
	// ItemName names array elements where a format needs one (XML).
	ItemName string
	Value    any
	Fields   []*Node
	Items    []*Node

	kind nodeKind
}

func newObject(name string) *Node {
	return &Node{Name: name, kind: objectNode}
}

func (n *Node) IsObject() bool { return n.kind == objectNode }
func (n *Node) IsArray() bool  { return n.kind == arrayNode }
func (n *Node) IsLeaf() bool   { return n.kind == leafNode }

// field returns the direct child called name, creating it with kind if missing.
func (n *Node) field(name string, kind nodeKind) *Node {
	for _, f := range n.Fields {
		if f.Name == name {
			return f
		}
	}
	f := &Node{Name: name, kind: kind}
	n.Fields = append(n.Fields, f)
	return f
}

// object walks path from n, creating objects as needed.
func (n *Node) object(path string) *Node {
	cur := n
	for _, seg := range strings.Split(path, ".") {
		cur = cur.field(seg, objectNode)
	}
	return cur
}

// array creates the array at path. Elements are appended by the caller.
func (n *Node) array(path, itemName string) *Node {
	parent, name := n.split(path)
	a := parent.field(name, arrayNode)
	a.ItemName = itemName
	return a
}

func (n *Node) split(path string) (*Node, string) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return n, path
	}
	return n.object(path[:i]), path[i+1:]
}

// set stores a leaf at path. An empty path is a field the shape does not carry.
func (n *Node) set(path string, value any) {
	if path == "" {
		return
	}
	parent, name := n.split(path)
	leaf := parent.field(name, leafNode)
	leaf.Value = value
}

func (n *Node) setFloat(path string, v *float64) {
	if v != nil {
		n.set(path, *v)
	}
}

func (n *Node) setInt(path string, v *int64) {
	if v != nil {
		n.set(path, *v)
	}
}

func (n *Node) setString(path string, v *string) {
	if v != nil {
		n.set(path, *v)
	}
}

// scalar renders a leaf value as text, the same way in every format.
func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
