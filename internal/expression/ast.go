package expression

import (
	"fmt"
	"strings"
)

// Node is a node of the expression syntax tree
type Node interface {
	// Pos returns the 1-indexed position of the node in the source
	Pos() int
	// String renders the node in a fully parenthesized debug form
	String() string
}

// ConstantNode is a number, string, boolean or null literal
type ConstantNode struct {
	Value    interface{}
	Position int
}

// NameNode is a variable reference
type NameNode struct {
	Name     string
	Position int
}

// FunctionNode is a call of a registered function
type FunctionNode struct {
	Name      string
	Arguments []Node
	Position  int
}

// UnaryNode is a prefix operator application
type UnaryNode struct {
	Operator string
	Operand  Node
	Position int
}

// BinaryNode is an infix operator application
type BinaryNode struct {
	Operator string
	Left     Node
	Right    Node
	Position int
}

// ConditionalNode is a ternary expression. Then is nil for "a ?: b".
type ConditionalNode struct {
	Condition Node
	Then      Node
	Else      Node
	Position  int
}

// AccessKind distinguishes attribute access forms
type AccessKind int

const (
	// AccessProperty is obj.name
	AccessProperty AccessKind = iota
	// AccessMethod is obj.name(args)
	AccessMethod
	// AccessIndex is obj[expr]
	AccessIndex
)

// GetAttrNode is a property, method or index access
type GetAttrNode struct {
	Object    Node
	Attribute Node
	Arguments []Node
	Kind      AccessKind
	NullSafe  bool
	Position  int
}

// ArrayNode is a list or hash literal. Keys is nil for lists.
type ArrayNode struct {
	Keys     []Node
	Values   []Node
	IsHash   bool
	Position int
}

func (n *ConstantNode) Pos() int    { return n.Position }
func (n *NameNode) Pos() int        { return n.Position }
func (n *FunctionNode) Pos() int    { return n.Position }
func (n *UnaryNode) Pos() int       { return n.Position }
func (n *BinaryNode) Pos() int      { return n.Position }
func (n *ConditionalNode) Pos() int { return n.Position }
func (n *GetAttrNode) Pos() int     { return n.Position }
func (n *ArrayNode) Pos() int       { return n.Position }

func (n *ConstantNode) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

func (n *NameNode) String() string { return n.Name }

func (n *FunctionNode) String() string {
	return n.Name + "(" + joinNodes(n.Arguments) + ")"
}

func (n *UnaryNode) String() string {
	if n.Operator == "not" {
		return "(not " + n.Operand.String() + ")"
	}
	return "(" + n.Operator + n.Operand.String() + ")"
}

func (n *BinaryNode) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

func (n *ConditionalNode) String() string {
	if n.Then == nil {
		return "(" + n.Condition.String() + " ?: " + n.Else.String() + ")"
	}
	return "(" + n.Condition.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *GetAttrNode) String() string {
	dot := "."
	if n.NullSafe {
		dot = "?."
	}
	switch n.Kind {
	case AccessMethod:
		return n.Object.String() + dot + attributeName(n.Attribute) + "(" + joinNodes(n.Arguments) + ")"
	case AccessIndex:
		return n.Object.String() + "[" + n.Attribute.String() + "]"
	default:
		return n.Object.String() + dot + attributeName(n.Attribute)
	}
}

func attributeName(n Node) string {
	if c, ok := n.(*ConstantNode); ok {
		if s, ok := c.Value.(string); ok {
			return s
		}
	}
	return n.String()
}

func (n *ArrayNode) String() string {
	if !n.IsHash {
		return "[" + joinNodes(n.Values) + "]"
	}
	parts := make([]string, len(n.Values))
	for i := range n.Values {
		parts[i] = n.Keys[i].String() + ": " + n.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = node.String()
	}
	return strings.Join(parts, ", ")
}
