// Package ast defines the expression and directive tree built by the parser
package ast

import (
	"github.com/xplshn/tpa/pkg/token"
)

// NodeType defines the kind of a node in the tree
type NodeType int

const (
	// Expressions
	NumLiteral NodeType = iota
	CharLiteral
	StringLiteral
	Ident
	BinaryOp
	UnaryOp
	AssignOp
	Call

	// Declarations and directives
	Directive
	Declaration
	SigName
	SigBody
	Unit

	Error
)

var nodeTypeNames = [...]string{
	NumLiteral:    "NumLiteral",
	CharLiteral:   "CharLiteral",
	StringLiteral: "StringLiteral",
	Ident:         "Ident",
	BinaryOp:      "BinaryOp",
	UnaryOp:       "UnaryOp",
	AssignOp:      "AssignOp",
	Call:          "Call",
	Directive:     "Directive",
	Declaration:   "Declaration",
	SigName:       "SigName",
	SigBody:       "SigBody",
	Unit:          "Unit",
	Error:         "Error",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "NodeType(?)"
}

// Node is one tree node. Every node owns its children exclusively.
type Node struct {
	Type NodeType
	Tok  token.Token
	Span token.Span
	Data interface{}
}

// --- Node Data Structs ---
type NumLiteralNode struct {
	Value uint64
	Radix int
}
type CharLiteralNode struct{ Value rune }
type StringLiteralNode struct{ Value string }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          token.Op
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   token.Op
	Expr *Node
}
type AssignOpNode struct {
	Op            token.Op
	Target, Value *Node
}
type CallNode struct {
	Callee *Node
	Args   []*Node
}
type DirectiveNode struct {
	Preproc token.Preproc
	Path    *Node
}
type DeclarationNode struct {
	Name      string
	Modifiers []token.Token
	Type      *token.Token
	Value     *Node
}
type SigNameNode struct{ Name string }
type SigBodyNode struct{ Fields []*Node }
type UnitNode struct{ Items []*Node }
type ErrorNode struct{ Msg string }

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, span token.Span, data interface{}) *Node {
	return &Node{Type: nodeType, Tok: tok, Span: span, Data: data}
}

func NewNumLiteral(tok token.Token) *Node {
	radix := 10
	switch tok.Type {
	case token.Hex:
		radix = 16
	case token.Binary:
		radix = 2
	}
	return newNode(tok, NumLiteral, tok.Span, NumLiteralNode{Value: tok.Num, Radix: radix})
}

func NewCharLiteral(tok token.Token) *Node {
	return newNode(tok, CharLiteral, tok.Span, CharLiteralNode{Value: tok.Char})
}

func NewStringLiteral(tok token.Token) *Node {
	return newNode(tok, StringLiteral, tok.Span, StringLiteralNode{Value: tok.Value})
}

func NewIdent(tok token.Token) *Node {
	return newNode(tok, Ident, tok.Span, IdentNode{Name: tok.Value})
}

func NewBinaryOp(tok token.Token, left, right *Node) *Node {
	return newNode(tok, BinaryOp, left.Span.Cover(right.Span), BinaryOpNode{Op: tok.Op, Left: left, Right: right})
}

func NewUnaryOp(tok token.Token, expr *Node) *Node {
	return newNode(tok, UnaryOp, tok.Span.Cover(expr.Span), UnaryOpNode{Op: tok.Op, Expr: expr})
}

func NewAssignOp(tok token.Token, target, value *Node) *Node {
	return newNode(tok, AssignOp, target.Span.Cover(value.Span), AssignOpNode{Op: tok.Op, Target: target, Value: value})
}

// NewCall spans from the callee to the closing parenthesis.
func NewCall(callee *Node, args []*Node, closing token.Token) *Node {
	return newNode(callee.Tok, Call, callee.Span.Cover(closing.Span), CallNode{Callee: callee, Args: args})
}

// NewDirective spans the marker and the directive keyword; the path keeps
// its own span.
func NewDirective(pound, keyword token.Token, path *Node) *Node {
	return newNode(keyword, Directive, pound.Span.Cover(keyword.Span), DirectiveNode{Preproc: keyword.Preproc, Path: path})
}

func NewDeclaration(name token.Token, modifiers []token.Token, typ *token.Token, value *Node) *Node {
	span := name.Span
	if len(modifiers) > 0 {
		span = span.Cover(modifiers[0].Span)
	}
	if typ != nil {
		span = span.Cover(typ.Span)
	}
	if value != nil {
		span = span.Cover(value.Span)
	}
	return newNode(name, Declaration, span, DeclarationNode{Name: name.Value, Modifiers: modifiers, Type: typ, Value: value})
}

func NewSigName(tok token.Token) *Node {
	return newNode(tok, SigName, tok.Span, SigNameNode{Name: tok.Value})
}

func NewSigBody(open, closing token.Token, fields []*Node) *Node {
	return newNode(open, SigBody, open.Span.Cover(closing.Span), SigBodyNode{Fields: fields})
}

func NewUnit(items []*Node, span token.Span) *Node {
	return newNode(token.Token{}, Unit, span, UnitNode{Items: items})
}

// NewError records the offending token so a partial tree can still be
// returned.
func NewError(tok token.Token, msg string) *Node {
	return newNode(tok, Error, tok.Span, ErrorNode{Msg: msg})
}

// Walk visits n and its children depth-first, stopping a branch when fn
// returns false.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch d := n.Data.(type) {
	case BinaryOpNode:
		Walk(d.Left, fn)
		Walk(d.Right, fn)
	case UnaryOpNode:
		Walk(d.Expr, fn)
	case AssignOpNode:
		Walk(d.Target, fn)
		Walk(d.Value, fn)
	case CallNode:
		Walk(d.Callee, fn)
		for _, arg := range d.Args {
			Walk(arg, fn)
		}
	case DirectiveNode:
		Walk(d.Path, fn)
	case DeclarationNode:
		Walk(d.Value, fn)
	case SigBodyNode:
		for _, f := range d.Fields {
			Walk(f, fn)
		}
	case UnitNode:
		for _, item := range d.Items {
			Walk(item, fn)
		}
	}
}
