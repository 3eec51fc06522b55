package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Empty
	Comment
	Error
	Ident
	Number
	Hex
	Binary
	Char
	String
	Operator
	Keyword
	Directive
	Semi
	Colon
	Comma
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	At
	Pound
	Dollar
	Question
	Dot
	Backtick
	BSlash
	Underscore
)

var typeNames = [...]string{
	EOF:        "EOF",
	Empty:      "whitespace",
	Comment:    "comment",
	Error:      "error",
	Ident:      "identifier",
	Number:     "number",
	Hex:        "hex number",
	Binary:     "binary number",
	Char:       "character",
	String:     "string",
	Operator:   "operator",
	Keyword:    "keyword",
	Directive:  "directive",
	Semi:       ";",
	Colon:      ":",
	Comma:      ",",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	At:         "@",
	Pound:      "#",
	Dollar:     "$",
	Question:   "?",
	Dot:        ".",
	Backtick:   "`",
	BSlash:     "\\",
	Underscore: "_",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Punctuation maps every single-byte punctuation character to its token.
var Punctuation = map[byte]Type{
	';':  Semi,
	':':  Colon,
	',':  Comma,
	'(':  LParen,
	')':  RParen,
	'{':  LBrace,
	'}':  RBrace,
	'[':  LBracket,
	']':  RBracket,
	'@':  At,
	'#':  Pound,
	'$':  Dollar,
	'?':  Question,
	'.':  Dot,
	'`':  Backtick,
	'\\': BSlash,
	'_':  Underscore,
}

// ErrorKind classifies an Error token.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrInvalidChar
	ErrUnknownEscape
	ErrUnterminated
	ErrEmptyChar
	ErrLongChar
	ErrMalformedNumber
	ErrUnknownDirective
	// ErrTokenLimit is produced by a cursor, never the scanner, once the
	// configured token budget is spent.
	ErrTokenLimit
)

var errorKindNames = [...]string{
	ErrNone:             "none",
	ErrInvalidChar:      "invalid character",
	ErrUnknownEscape:    "unknown escape",
	ErrUnterminated:     "unterminated literal",
	ErrEmptyChar:        "empty character literal",
	ErrLongChar:         "multi-character literal",
	ErrMalformedNumber:  "malformed number",
	ErrUnknownDirective: "unknown directive",
	ErrTokenLimit:       "token limit",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Span is the half-open byte range [Start, End) of a lexeme in the source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// Text slices the raw lexeme out of src.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// Cover returns the smallest span containing both s and o.
func (s Span) Cover(o Span) Span {
	if o.Start < s.Start {
		s.Start = o.Start
	}
	if o.End > s.End {
		s.End = o.End
	}
	return s
}

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Start, s.End) }

// Token is a tagged value; only the payload field selected by Type is set.
type Token struct {
	Type    Type
	Op      Op
	Keyword KeywordKind
	Preproc Preproc
	Err     ErrorKind
	Value   string
	Char    rune
	Num     uint64
	Span    Span
}

func (t Token) Len() int { return t.Span.Len() }

// IsTrivia reports whether the cursor skips t between significant tokens.
func (t Token) IsTrivia() bool { return t.Type == Empty || t.Type == Comment }

// IsLiteral reports whether t starts a literal production.
func (t Token) IsLiteral() bool {
	switch t.Type {
	case Number, Hex, Binary, Char, String:
		return true
	}
	return false
}

// IsOp reports whether t is the operator op.
func (t Token) IsOp(op Op) bool { return t.Type == Operator && t.Op == op }

// IsKeyword reports whether t is the keyword kw.
func (t Token) IsKeyword(kw KeywordKind) bool { return t.Type == Keyword && t.Keyword == kw }

func (t Token) String() string {
	switch t.Type {
	case Operator:
		return fmt.Sprintf("[operator %s]", t.Op)
	case Keyword:
		return fmt.Sprintf("[keyword %s]", t.Keyword)
	case Directive:
		return fmt.Sprintf("[directive %s]", t.Preproc)
	case Ident:
		return fmt.Sprintf("[identifier %s]", t.Value)
	case String:
		return fmt.Sprintf("[string %q]", t.Value)
	case Char:
		return fmt.Sprintf("[character %q]", t.Char)
	case Number, Hex, Binary:
		return fmt.Sprintf("[%s %d]", t.Type, t.Num)
	case Error:
		return fmt.Sprintf("[error %s: %s]", t.Err, t.Value)
	}
	return "[" + t.Type.String() + "]"
}
