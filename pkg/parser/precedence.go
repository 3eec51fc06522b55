package parser

import "github.com/xplshn/tpa/pkg/token"

// PrecedenceTable maps binary operators to their binding power. Higher binds
// tighter; operators missing from the table never form a binary expression.
type PrecedenceTable map[token.Op]int

// DefaultPrecedence has two tiers: additive, then multiplicative and bitwise.
var DefaultPrecedence = PrecedenceTable{
	token.Add: 1, token.Sub: 1,

	token.Mul: 2, token.Div: 2, token.Mod: 2,
	token.Not: 2, token.Xor: 2, token.Or: 2, token.And: 2,
	token.Shl: 2, token.Shr: 2,
}

// ExtendedPrecedence adds logical and comparison tiers beneath the
// arithmetic ones.
var ExtendedPrecedence = PrecedenceTable{
	token.OrLog: 1, token.AndLog: 2,
	token.EqEq: 3, token.NotEq: 3,
	token.Lt: 4, token.LtEq: 4, token.Gt: 4, token.GtEq: 4,

	token.Add: 5, token.Sub: 5,

	token.Mul: 6, token.Div: 6, token.Mod: 6,
	token.Not: 6, token.Xor: 6, token.Or: 6, token.And: 6,
	token.Shl: 6, token.Shr: 6,
}

// Of returns the binding power of tok if it is a binary operator.
func (t PrecedenceTable) Of(tok token.Token) (int, bool) {
	if tok.Type != token.Operator {
		return 0, false
	}
	prec, ok := t[tok.Op]
	return prec, ok
}
