package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/tpa/pkg/token"
)

func tok(typ token.Type, start, end int) token.Token {
	return token.Token{Type: typ, Span: token.Span{Start: start, End: end}}
}

func num(v uint64, start, end int) *Node {
	t := tok(token.Number, start, end)
	t.Num = v
	return NewNumLiteral(t)
}

func op(o token.Op, start, end int) token.Token {
	t := tok(token.Operator, start, end)
	t.Op = o
	return t
}

func ident(name string, start int) *Node {
	t := tok(token.Ident, start, start+len(name))
	t.Value = name
	return NewIdent(t)
}

func TestString(t *testing.T) {
	// 1 + 2 * 3
	mul := NewBinaryOp(op(token.Mul, 6, 7), num(2, 4, 5), num(3, 8, 9))
	add := NewBinaryOp(op(token.Add, 2, 3), num(1, 0, 1), mul)

	str := tok(token.String, 8, 14)
	str.Value = "math"
	pound, kw := tok(token.Pound, 0, 1), tok(token.Directive, 1, 7)
	kw.Preproc = token.Import

	pub := tok(token.Keyword, 0, 3)
	pub.Keyword = token.Pub
	i32 := tok(token.Keyword, 7, 10)
	i32.Keyword = token.I32
	name := tok(token.Ident, 4, 5)
	name.Value = "x"

	char := tok(token.Char, 0, 3)
	char.Char = 'a'

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"precedence", add, "(+ 1 (* 2 3))"},
		{"unary", NewUnaryOp(op(token.Sub, 0, 1), ident("x", 1)), "(- x)"},
		{"assign", NewAssignOp(op(token.AddAs, 2, 4), ident("x", 0), num(1, 5, 6)), "(+= x 1)"},
		{"call", NewCall(ident("f", 0), []*Node{num(1, 2, 3), ident("y", 5)}, tok(token.RParen, 6, 7)), "(call f 1 y)"},
		{"directive", NewDirective(pound, kw, NewStringLiteral(str)), `(#import "math")`},
		{"declaration", NewDeclaration(name, []token.Token{pub}, &i32, num(3, 13, 14)), "(decl pub x : i32 = 3)"},
		{"char", NewCharLiteral(char), "'a'"},
		{"signature", NewSigBody(tok(token.LBrace, 0, 1), tok(token.RBrace, 4, 5), []*Node{NewDeclaration(name, nil, nil, nil)}), "(sig-body (decl x))"},
		{"error", NewError(tok(token.Semi, 0, 1), "boom"), `(error "boom")`},
		{"unit", NewUnit([]*Node{num(1, 0, 1), ident("a", 3)}, token.Span{Start: 0, End: 4}), "(unit 1 a)"},
		{"nil", nil, "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.node); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpans(t *testing.T) {
	mul := NewBinaryOp(op(token.Mul, 6, 7), num(2, 4, 5), num(3, 8, 9))
	add := NewBinaryOp(op(token.Add, 2, 3), num(1, 0, 1), mul)
	if diff := cmp.Diff(token.Span{Start: 0, End: 9}, add.Span); diff != "" {
		t.Errorf("binary span mismatch (-want +got):\n%s", diff)
	}

	str := tok(token.String, 8, 14)
	pound, kw := tok(token.Pound, 0, 1), tok(token.Directive, 1, 7)
	dir := NewDirective(pound, kw, NewStringLiteral(str))
	if dir.Span != (token.Span{Start: 0, End: 7}) {
		t.Errorf("directive span = %v, want 0..7", dir.Span)
	}
	if path := dir.Data.(DirectiveNode).Path; path.Span != (token.Span{Start: 8, End: 14}) {
		t.Errorf("path span = %v, want 8..14", path.Span)
	}

	hex := tok(token.Hex, 0, 4)
	hex.Num = 31
	if d := NewNumLiteral(hex).Data.(NumLiteralNode); d.Radix != 16 || d.Value != 31 {
		t.Errorf("hex literal = %+v", d)
	}
}

func TestWalk(t *testing.T) {
	call := NewCall(ident("f", 0), []*Node{ident("a", 2), NewUnaryOp(op(token.NotLog, 5, 6), ident("b", 6))}, tok(token.RParen, 7, 8))
	unit := NewUnit([]*Node{call, ident("c", 10)}, token.Span{Start: 0, End: 11})

	var names []string
	Walk(unit, func(n *Node) bool {
		if id, ok := n.Data.(IdentNode); ok {
			names = append(names, id.Name)
		}
		return n.Type != UnaryOp
	})
	if diff := cmp.Diff([]string{"f", "a", "c"}, names); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}
