package token

import "fmt"

type Op int

const (
	And    Op = iota // &
	Or               // |
	Xor              // ^
	Shl              // <<
	Shr              // >>
	Not              // ~
	As               // =
	NotAs            // ~=
	AndAs            // &=
	OrAs             // |=
	XorAs            // ^=
	ShlAs            // <<=
	ShrAs            // >>=
	AndLog           // &&
	OrLog            // ||
	NotEq            // !=
	EqEq             // ==
	NotLog           // !
	Lt               // <
	LtEq             // <=
	Gt               // >
	GtEq             // >=
	Add              // +
	Sub              // -
	Mul              // *
	Div              // /
	Mod              // %
	Inc              // ++
	Dec              // --
	AddAs            // +=
	SubAs            // -=
	MulAs            // *=
	DivAs            // /=
	ModAs            // %=
	OpCount
)

var opStrings = [...]string{
	And: "&", Or: "|", Xor: "^", Shl: "<<", Shr: ">>", Not: "~",
	As: "=", NotAs: "~=", AndAs: "&=", OrAs: "|=", XorAs: "^=", ShlAs: "<<=", ShrAs: ">>=",
	AndLog: "&&", OrLog: "||", NotEq: "!=", EqEq: "==", NotLog: "!",
	Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%", Inc: "++", Dec: "--",
	AddAs: "+=", SubAs: "-=", MulAs: "*=", DivAs: "/=", ModAs: "%=",
}

// OpMap is the reverse of Op.String, built at init.
var OpMap = make(map[string]Op, OpCount)

func init() {
	for op, s := range opStrings {
		OpMap[s] = Op(op)
	}
}

func (o Op) String() string {
	if o >= 0 && o < OpCount {
		return opStrings[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// IsAssign reports whether o stores into its left operand.
func (o Op) IsAssign() bool {
	switch o {
	case As, NotAs, AndAs, OrAs, XorAs, ShlAs, ShrAs, AddAs, SubAs, MulAs, DivAs, ModAs:
		return true
	}
	return false
}

// IsPrefix reports whether o may start a unary expression.
func (o Op) IsPrefix() bool {
	switch o {
	case Not, NotLog, Sub, Add, Inc, Dec:
		return true
	}
	return false
}
