package parser

import (
	"errors"
	"fmt"

	"github.com/xplshn/tpa/pkg/ast"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/token"
)

type ErrorKind int

const (
	// ScanError wraps an Error token produced by the scanner.
	ScanError ErrorKind = iota
	// SyntaxError is a well-formed token in the wrong place.
	SyntaxError
	// LimitError means the configured token budget ran out.
	LimitError
)

func (k ErrorKind) String() string {
	switch k {
	case ScanError:
		return "scan error"
	case LimitError:
		return "limit error"
	}
	return "syntax error"
}

// Error is a parse failure anchored to the offending token.
type Error struct {
	Kind ErrorKind
	Tok  token.Token
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s: %s", e.Tok.Span, e.Kind, e.Msg) }

func (e *Error) Span() token.Span { return e.Tok.Span }

func syntaxError(tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Kind: SyntaxError, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

func scanError(tok token.Token) *Error {
	if tok.Err == token.ErrTokenLimit {
		return &Error{Kind: LimitError, Tok: tok, Msg: tok.Value}
	}
	return &Error{Kind: ScanError, Tok: tok, Msg: tok.Value}
}

// errorNode embeds err in the tree at the production that failed.
func errorNode(err error) *ast.Node {
	var perr *Error
	if !errors.As(err, &perr) {
		return ast.NewError(token.Token{}, err.Error())
	}
	return ast.NewError(perr.Tok, perr.Msg)
}

// unexpected reports tok, deferring to the scanner's message for Error
// tokens.
func unexpected(tok token.Token, want string) *Error {
	if tok.Type == token.Error {
		return scanError(tok)
	}
	return syntaxError(tok, "expected %s, found %s", want, describe(tok))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.Operator:
		return fmt.Sprintf("'%s'", tok.Op)
	case token.Keyword:
		return fmt.Sprintf("keyword '%s'", tok.Keyword)
	case token.Directive:
		return fmt.Sprintf("directive '%s'", tok.Preproc)
	case token.Ident:
		return fmt.Sprintf("identifier '%s'", tok.Value)
	}
	if tok.IsLiteral() {
		return tok.Type.String() + " literal"
	}
	return fmt.Sprintf("'%s'", tok.Type)
}

// ErrorList collects every error of one parse in source order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns l as an error, or nil if it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Warning is a non-fatal diagnostic enabled through config warnings.
type Warning struct {
	Kind config.Warning
	Tok  token.Token
	Msg  string
}
