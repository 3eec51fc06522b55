package parser

import (
	"errors"
	"fmt"

	"github.com/xplshn/tpa/pkg/ast"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/cursor"
	"github.com/xplshn/tpa/pkg/token"
)

// Parser holds the state for one parse of one source
type Parser struct {
	cur      *cursor.Cursor
	cfg      *config.Config
	prec     PrecedenceTable
	warnings []Warning
}

type Option func(*Parser)

// WithPrecedence replaces the binding power table.
func WithPrecedence(t PrecedenceTable) Option {
	return func(p *Parser) { p.prec = t }
}

// New creates a Parser over src. A nil cfg uses the defaults.
func New(src string, cfg *config.Config, opts ...Option) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	p := &Parser{cur: cursor.New(src, cfg), cfg: cfg, prec: DefaultPrecedence}
	if cfg.IsFeatureEnabled(config.FeatCompareOps) {
		p.prec = ExtendedPrecedence
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Cursor() *cursor.Cursor { return p.cur }

// Warnings returns the warnings emitted so far, in source order.
func (p *Parser) Warnings() []Warning { return p.warnings }

// Parser helpers
func (p *Parser) check(typ token.Type) bool {
	return p.cur.Peek().Type == typ
}

func (p *Parser) expect(typ token.Type, want string) (token.Token, error) {
	tok := p.cur.Peek()
	if tok.Type != typ {
		return tok, unexpected(tok, want)
	}
	return p.cur.Next(), nil
}

func (p *Parser) warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !p.cfg.IsWarningEnabled(wt) {
		return
	}
	p.warnings = append(p.warnings, Warning{Kind: wt, Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

func isAssignOp(tok token.Token) bool {
	return tok.Type == token.Operator && tok.Op.IsAssign()
}

// partial returns n, or an Error node standing in for it.
func partial(n *ast.Node, err error) *ast.Node {
	if n != nil {
		return n
	}
	return errorNode(err)
}

// Expression Parsing

// ParseLiteral consumes a numeric, character or string literal.
func (p *Parser) ParseLiteral() (*ast.Node, error) {
	tok := p.cur.Peek()
	if !tok.IsLiteral() {
		return nil, unexpected(tok, "a literal")
	}
	p.cur.Next()

	switch tok.Type {
	case token.Char:
		return ast.NewCharLiteral(tok), nil
	case token.String:
		return ast.NewStringLiteral(tok), nil
	}
	if text := tok.Span.Text(p.cur.Source()); tok.Type == token.Number && len(text) > 1 && text[0] == '0' {
		p.warn(config.WarnLeadingZero, tok, "decimal literal '%s' has a leading zero", text)
	}
	return ast.NewNumLiteral(tok), nil
}

// ParseExpr parses a full expression, assignments included. When an operand
// fails inside an operator the partial tree is returned with the error,
// the failed operand replaced by an Error node.
func (p *Parser) ParseExpr() (*ast.Node, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return lhs, err
	}
	if lhs.Type == ast.Ident && isAssignOp(p.cur.Peek()) {
		return p.parseAssign(lhs)
	}

	expr, err := p.ParseBinExpr(lhs, 0)
	if err != nil {
		return expr, err
	}
	if next := p.cur.Peek(); isAssignOp(next) {
		return nil, syntaxError(next, "invalid target for assignment")
	}
	return expr, nil
}

func (p *Parser) parseAssign(target *ast.Node) (*ast.Node, error) {
	op := p.cur.Peek()
	if !p.cfg.IsFeatureEnabled(config.FeatAssignOps) {
		return nil, syntaxError(op, "assignment expressions are disabled by the current feature set (-Fno-assign-ops)")
	}
	p.cur.Next()
	value, err := p.ParseExpr()
	if err != nil {
		return ast.NewAssignOp(op, target, partial(value, err)), err
	}
	return ast.NewAssignOp(op, target, value), nil
}

// ParseBinExpr folds binary operators of binding power >= minPrec onto lhs.
// An operator is only consumed once it is known to bind.
func (p *Parser) ParseBinExpr(lhs *ast.Node, minPrec int) (*ast.Node, error) {
	for {
		opTok := p.cur.Peek()
		prec, ok := p.prec.Of(opTok)
		if !ok || prec < minPrec {
			return lhs, nil
		}
		p.cur.Next()

		rhs, err := p.parseOperand()
		if err != nil {
			return ast.NewBinaryOp(opTok, lhs, partial(rhs, err)), err
		}
		for {
			nextPrec, ok := p.prec.Of(p.cur.Peek())
			if !ok || nextPrec <= prec {
				break
			}
			if rhs, err = p.ParseBinExpr(rhs, prec+1); err != nil {
				return ast.NewBinaryOp(opTok, lhs, partial(rhs, err)), err
			}
		}
		lhs = ast.NewBinaryOp(opTok, lhs, rhs)
	}
}

func (p *Parser) parseOperand() (*ast.Node, error) {
	tok := p.cur.Peek()
	switch {
	case tok.IsLiteral():
		return p.ParseLiteral()
	case tok.Type == token.Ident:
		p.cur.Next()
		ident := ast.NewIdent(tok)
		if p.check(token.LParen) {
			return p.parseCall(ident)
		}
		return ident, nil
	case tok.Type == token.LParen:
		p.cur.Next()
		inner, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "')' after expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case tok.Type == token.Operator && tok.Op.IsPrefix():
		p.cur.Next()
		operand, err := p.parseOperand()
		if err != nil {
			return ast.NewUnaryOp(tok, partial(operand, err)), err
		}
		return ast.NewUnaryOp(tok, operand), nil
	}
	return nil, unexpected(tok, "an expression")
}

func (p *Parser) parseCall(callee *ast.Node) (*ast.Node, error) {
	p.cur.Next()
	var args []*ast.Node
	if !p.check(token.RParen) {
		for {
			arg, err := p.ParseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(token.Comma) {
				break
			}
			p.cur.Next()
		}
	}
	closing, err := p.expect(token.RParen, "')' after call arguments")
	if err != nil {
		return nil, err
	}
	return ast.NewCall(callee, args, closing), nil
}

// Directive and Declaration Parsing

// ParsePreproc parses '#import "path"'. The keyword is scanned directly
// after '#', without skipping whitespace.
func (p *Parser) ParsePreproc() (*ast.Node, error) {
	pound, err := p.expect(token.Pound, "'#'")
	if err != nil {
		return nil, err
	}
	kw := p.cur.Expect(p.cur.Scanner().ScanDirective)
	if kw.Type != token.Directive {
		return nil, unexpected(kw, "a preprocessor keyword after '#'")
	}
	if kw.Preproc != token.Import {
		return nil, syntaxError(kw, "'#%s' is not supported; only '#import' is", kw.Preproc)
	}

	p.cur.SkipEmpty()
	path := p.cur.Expect(p.cur.Scanner().ScanQuoted)
	if path.Type != token.String {
		return nil, unexpected(path, "a quoted path after '#import'")
	}
	return ast.NewDirective(pound, kw, ast.NewStringLiteral(path)), nil
}

// ParseDeclaration parses '{modifier} name [: type] [= expr]'.
func (p *Parser) ParseDeclaration() (*ast.Node, error) {
	var mods []token.Token
	seen := make(map[token.KeywordKind]bool)
	var name token.Token
	for {
		tok := p.cur.Peek()
		if tok.Type == token.Keyword && tok.Keyword.IsModifier() {
			p.cur.Next()
			if seen[tok.Keyword] {
				p.warn(config.WarnDupModifier, tok, "duplicate modifier '%s'", tok.Keyword)
			}
			seen[tok.Keyword] = true
			mods = append(mods, tok)
			continue
		}
		if tok.Type != token.Ident {
			return nil, unexpected(tok, "a modifier or declaration name")
		}
		name = p.cur.Next()
		break
	}

	var typ *token.Token
	if p.check(token.Colon) {
		p.cur.Next()
		t := p.cur.Peek()
		if t.Type != token.Ident && !(t.Type == token.Keyword && t.Keyword.IsType()) {
			return nil, unexpected(t, "a type after ':'")
		}
		p.cur.Next()
		typ = &t
	}

	var value *ast.Node
	if p.cur.Peek().IsOp(token.As) {
		p.cur.Next()
		v, err := p.ParseExpr()
		if err != nil {
			if v == nil {
				return nil, err
			}
			return ast.NewDeclaration(name, mods, typ, v), err
		}
		value = v
	}
	return ast.NewDeclaration(name, mods, typ, value), nil
}

// IfErrorParse runs first and, if it fails, rewinds c to exactly where it
// was and runs fallback instead.
func IfErrorParse[T any](c *cursor.Cursor, first, fallback func() (T, error)) (T, error) {
	cp := c.Checkpoint()
	v, err := first()
	if err == nil {
		return v, nil
	}
	c.Restore(cp)
	return fallback()
}

// ParseSignature parses either a bare name or a '{ decl, ... }' body.
func (p *Parser) ParseSignature() (*ast.Node, error) {
	n := len(p.warnings)
	return IfErrorParse(p.cur, p.parseSigName, func() (*ast.Node, error) {
		p.warnings = p.warnings[:n]
		return p.parseSigBody()
	})
}

func (p *Parser) parseSigName() (*ast.Node, error) {
	tok, err := p.expect(token.Ident, "a signature name")
	if err != nil {
		return nil, err
	}
	return ast.NewSigName(tok), nil
}

func (p *Parser) parseSigBody() (*ast.Node, error) {
	open, err := p.expect(token.LBrace, "a signature name or '{'")
	if err != nil {
		return nil, err
	}
	var fields []*ast.Node
	for {
		field, err := p.ParseDeclaration()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if !p.check(token.Comma) {
			break
		}
		p.cur.Next()
	}
	closing, err := p.expect(token.RBrace, "',' or '}' in signature body")
	if err != nil {
		return nil, err
	}
	return ast.NewSigBody(open, closing, fields), nil
}

// Translation Unit

// Parse parses the whole source. The returned Unit is never nil; failed
// items appear in it as Error nodes, embedded at the failed production
// where one was reached, and in the returned ErrorList. Running out of
// token budget ends the parse.
func (p *Parser) Parse() (*ast.Node, error) {
	var items []*ast.Node
	var errs ErrorList
	for {
		tok := p.cur.Peek()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.Semi {
			p.cur.Next()
			continue
		}

		start := p.cur.Index()
		item, err := p.parseItem(tok)
		if err != nil {
			var perr *Error
			if !errors.As(err, &perr) {
				perr = syntaxError(tok, "%v", err)
			}
			errs = append(errs, perr)
			items = append(items, partial(item, perr))
			if perr.Kind == LimitError {
				break
			}
			p.synchronize(start)
			continue
		}
		items = append(items, item)
	}
	return ast.NewUnit(items, token.Span{Start: 0, End: len(p.cur.Source())}), errs.Err()
}

func (p *Parser) parseItem(tok token.Token) (*ast.Node, error) {
	switch {
	case tok.Type == token.Pound:
		return p.ParsePreproc()
	case tok.Type == token.Keyword && tok.Keyword.IsModifier():
		return p.ParseDeclaration()
	case tok.Type == token.Ident && p.startsDeclaration():
		return p.ParseDeclaration()
	}
	return p.ParseExpr()
}

// startsDeclaration reports whether the next identifier is followed by ':'.
func (p *Parser) startsDeclaration() bool {
	cp := p.cur.Checkpoint()
	defer p.cur.Restore(cp)
	p.cur.Next()
	return p.check(token.Colon)
}

// synchronize skips past the next ';', consuming at least one token. It
// stops early at EOF or when the token budget runs out.
func (p *Parser) synchronize(start int) {
	if p.cur.Index() <= start {
		if p.cur.Next().Type == token.Semi {
			return
		}
	}
	for {
		tok := p.cur.Peek()
		switch {
		case tok.Type == token.EOF, tok.Err == token.ErrTokenLimit:
			return
		case tok.Type == token.Semi:
			p.cur.Next()
			return
		}
		p.cur.Next()
	}
}
