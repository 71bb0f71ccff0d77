// Package syntax provides the expression tree inspected by the checker.
//
// A tree is built from [Node] values whose [Kind] is one of a small closed set.
// Only calls, attribute accesses and name references carry meaning for the
// checker; every other construct is an [Other] node that merely holds children.
package syntax

// Kind classifies a node.
type Kind uint8

// Node kinds.
const (
	KindOther Kind = iota
	KindCall
	KindAttribute
	KindName
)

// String returns the interchange name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindAttribute:
		return "attribute"
	case KindName:
		return "name"
	case KindOther:
		return "other"
	default:
		return "other"
	}
}

// ParseKind converts an interchange name back into a Kind.
// Unknown names map to KindOther.
func ParseKind(s string) Kind {
	switch s {
	case "call":
		return KindCall
	case "attribute":
		return KindAttribute
	case "name":
		return KindName
	default:
		return KindOther
	}
}

// Pos is a source position. Line is 1-based, Column is a 0-based byte offset.
type Pos struct {
	Line   int
	Column int
}

// Node is one syntax tree node.
//
// For KindCall the first child is the callee, followed by the arguments.
// For KindAttribute the first child is the base expression and Name holds the
// accessed attribute. For KindName, Name holds the identifier.
type Node struct {
	Type     string
	Name     string
	Children []*Node
	Pos      Pos
	Kind     Kind
}

// Callee returns the called expression of a call node, or nil.
func (n *Node) Callee() *Node {
	if n == nil || n.Kind != KindCall || len(n.Children) == 0 {
		return nil
	}

	return n.Children[0]
}

// Base returns the accessed expression of an attribute node, or nil.
func (n *Node) Base() *Node {
	if n == nil || n.Kind != KindAttribute || len(n.Children) == 0 {
		return nil
	}

	return n.Children[0]
}

// IsName reports whether n is a name reference to id.
func (n *Node) IsName(id string) bool {
	return n != nil && n.Kind == KindName && n.Name == id
}

// IsAttribute reports whether n is an attribute access of attr.
func (n *Node) IsAttribute(attr string) bool {
	return n != nil && n.Kind == KindAttribute && n.Name == attr
}

// Call builds a call node. The callee becomes the first child.
func Call(pos Pos, callee *Node, args ...*Node) *Node {
	children := make([]*Node, 0, len(args)+1)
	children = append(children, callee)
	children = append(children, args...)

	return &Node{Kind: KindCall, Type: "call", Pos: pos, Children: children}
}

// Attribute builds an attribute access base.attr.
func Attribute(pos Pos, base *Node, attr string) *Node {
	return &Node{Kind: KindAttribute, Type: "attribute", Pos: pos, Name: attr, Children: []*Node{base}}
}

// Name builds a name reference.
func Name(pos Pos, id string) *Node {
	return &Node{Kind: KindName, Type: "identifier", Pos: pos, Name: id}
}

// Other builds a node of any construct the checker does not inspect.
func Other(typ string, pos Pos, children ...*Node) *Node {
	return &Node{Kind: KindOther, Type: typ, Pos: pos, Children: children}
}

// At is shorthand for a Pos literal.
func At(line, column int) Pos {
	return Pos{Line: line, Column: column}
}

// Walk visits root and its descendants in pre-order until fn returns false.
// It uses an explicit stack, so arbitrarily deep trees do not grow the call stack.
// Nil children are skipped.
func Walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}

	stack := make([]*Node, 0, walkStackInitCap)
	stack = append(stack, root)

	for len(stack) > 0 {
		last := len(stack) - 1
		cur := stack[last]
		stack = stack[:last]

		if !fn(cur) {
			return
		}

		for i := len(cur.Children) - 1; i >= 0; i-- {
			if cur.Children[i] != nil {
				stack = append(stack, cur.Children[i])
			}
		}
	}
}

// Initial stack capacity for tree traversal, sized for typical expression trees.
const walkStackInitCap = 64

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	total := 0

	Walk(root, func(*Node) bool {
		total++

		return true
	})

	return total
}
