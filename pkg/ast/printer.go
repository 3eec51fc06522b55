package ast

import (
	"fmt"
	"strings"

	"github.com/xplshn/tpa/pkg/token"
)

// String renders n as an S-expression, e.g. "(+ 1 (* 2 3))".
func String(n *Node) string {
	var sb strings.Builder
	write(&sb, n)
	return sb.String()
}

func write(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("nil")
		return
	}

	switch d := n.Data.(type) {
	case NumLiteralNode:
		fmt.Fprintf(sb, "%d", d.Value)
	case CharLiteralNode:
		fmt.Fprintf(sb, "%q", d.Value)
	case StringLiteralNode:
		fmt.Fprintf(sb, "%q", d.Value)
	case IdentNode:
		sb.WriteString(d.Name)
	case BinaryOpNode:
		list(sb, d.Op.String(), d.Left, d.Right)
	case UnaryOpNode:
		list(sb, d.Op.String(), d.Expr)
	case AssignOpNode:
		list(sb, d.Op.String(), d.Target, d.Value)
	case CallNode:
		list(sb, "call", append([]*Node{d.Callee}, d.Args...)...)
	case DirectiveNode:
		list(sb, "#"+d.Preproc.String(), d.Path)
	case DeclarationNode:
		sb.WriteString("(decl")
		for _, m := range d.Modifiers {
			sb.WriteString(" " + m.Keyword.String())
		}
		sb.WriteString(" " + d.Name)
		if d.Type != nil {
			sb.WriteString(" : " + TypeName(*d.Type))
		}
		if d.Value != nil {
			sb.WriteString(" = ")
			write(sb, d.Value)
		}
		sb.WriteByte(')')
	case SigNameNode:
		sb.WriteString("(sig " + d.Name + ")")
	case SigBodyNode:
		list(sb, "sig-body", d.Fields...)
	case UnitNode:
		list(sb, "unit", d.Items...)
	case ErrorNode:
		fmt.Fprintf(sb, "(error %q)", d.Msg)
	default:
		fmt.Fprintf(sb, "(%s ?)", n.Type)
	}
}

func list(sb *strings.Builder, head string, children ...*Node) {
	sb.WriteByte('(')
	sb.WriteString(head)
	for _, c := range children {
		sb.WriteByte(' ')
		write(sb, c)
	}
	sb.WriteByte(')')
}

// TypeName spells a declaration type annotation.
func TypeName(tok token.Token) string {
	if tok.Type == token.Keyword {
		return tok.Keyword.String()
	}
	return tok.Value
}
