package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/tpa/pkg/ast"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/cursor"
	"github.com/xplshn/tpa/pkg/token"
)

func withFlags(t *testing.T, flags ...string) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	for _, f := range flags {
		if err := cfg.ApplyFlag(f); err != nil {
			t.Fatalf("ApplyFlag(%q): %v", f, err)
		}
	}
	return cfg
}

func asError(t *testing.T, err error) *Error {
	t.Helper()
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is not a *parser.Error", err)
	}
	return perr
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"a - b - c", "(- (- a b) c)"},
		{"a + b * c - d", "(- (+ a (* b c)) d)"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"a & b << 2 | c", "(| (<< (& a b) 2) c)"},
		{"a % b ~ c ^ d", "(^ (~ (% a b) c) d)"},
		{"-x * 2", "(* (- x) 2)"},
		{"~!x", "(~ (! x))"},
		{"++x + --y", "(+ (++ x) (-- y))"},
		{"f(1, g(x)) + 1", "(+ (call f 1 (call g x)) 1)"},
		{"f()", "(call f)"},
		{"x = y += 1 + 2", "(= x (+= y (+ 1 2)))"},
		{"x <<= 1", "(<<= x 1)"},
		{"0x10 + 0b1 + 'a'", "(+ (+ 16 1) 'a')"},
		{`"s\n"`, `"s\n"`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := New(tt.src, nil).ParseExpr()
			if err != nil {
				t.Fatalf("ParseExpr(%q): %v", tt.src, err)
			}
			if got := ast.String(node); got != tt.want {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestComparePrecedence(t *testing.T) {
	cfg := withFlags(t, "-Fcompare-ops")
	tests := []struct {
		src  string
		want string
	}{
		{"a || b && c == d < e + f", "(|| a (&& b (== c (< d (+ e f)))))"},
		{"a + 1 < b * 2", "(< (+ a 1) (* b 2))"},
		{"a == b != c", "(!= (== a b) c)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := New(tt.src, cfg).ParseExpr()
			if err != nil {
				t.Fatalf("ParseExpr(%q): %v", tt.src, err)
			}
			if got := ast.String(node); got != tt.want {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	// Without the extension comparisons have no binding power
	p := New("a < b", nil)
	node, err := p.ParseExpr()
	if err != nil || ast.String(node) != "a" {
		t.Fatalf("ParseExpr = %s, %v; want a", ast.String(node), err)
	}
	if next := p.Cursor().Peek(); !next.IsOp(token.Lt) {
		t.Errorf("next token = %v, want '<' left unconsumed", next)
	}
}

func TestWithPrecedence(t *testing.T) {
	table := PrecedenceTable{token.Add: 2, token.Mul: 1}
	node, err := New("1 + 2 * 3", nil, WithPrecedence(table)).ParseExpr()
	if err != nil {
		t.Fatal(err)
	}
	if got := ast.String(node); got != "(* (+ 1 2) 3)" {
		t.Errorf("got %s", got)
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		flags []string
		kind  ErrorKind
		msg   string
		span  token.Span
	}{
		{"missing operand", "1 +", nil, SyntaxError, "expected an expression, found end of input", token.Span{Start: 3, End: 3}},
		{"unclosed group", "(1", nil, SyntaxError, "expected ')' after expression, found end of input", token.Span{Start: 2, End: 2}},
		{"bad target", "1 = 2", nil, SyntaxError, "invalid target for assignment", token.Span{Start: 2, End: 3}},
		{"call target", "f() += 2", nil, SyntaxError, "invalid target for assignment", token.Span{Start: 4, End: 6}},
		{"keyword", "fn", nil, SyntaxError, "expected an expression, found keyword 'fn'", token.Span{Start: 0, End: 2}},
		{"scan error", `"\z"`, nil, ScanError, `unknown escape sequence '\z'`, token.Span{Start: 0, End: 4}},
		{"assign disabled", "x = 1", []string{"-Fno-assign-ops"}, SyntaxError,
			"assignment expressions are disabled by the current feature set (-Fno-assign-ops)", token.Span{Start: 2, End: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.src, withFlags(t, tt.flags...)).ParseExpr()
			if err == nil {
				t.Fatalf("ParseExpr(%q) succeeded", tt.src)
			}
			perr := asError(t, err)
			if perr.Kind != tt.kind || perr.Msg != tt.msg || perr.Span() != tt.span {
				t.Errorf("error = %v %q at %v, want %v %q at %v", perr.Kind, perr.Msg, perr.Span(), tt.kind, tt.msg, tt.span)
			}
		})
	}
}

func TestParseLiteral(t *testing.T) {
	p := New("0x1F", nil)
	node, err := p.ParseLiteral()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ast.NumLiteralNode{Value: 31, Radix: 16}, node.Data); diff != "" {
		t.Errorf("literal mismatch (-want +got):\n%s", diff)
	}

	// A failed match consumes nothing
	p = New("  name", nil)
	if _, err := p.ParseLiteral(); err == nil {
		t.Fatal("ParseLiteral accepted an identifier")
	}
	if p.Cursor().Index() != 0 {
		t.Errorf("Index() = %d after failed ParseLiteral, want 0", p.Cursor().Index())
	}
}

func TestLeadingZeroWarning(t *testing.T) {
	p := New("007 + 0 + 10", nil)
	if _, err := p.ParseExpr(); err != nil {
		t.Fatal(err)
	}
	want := []Warning{{
		Kind: config.WarnLeadingZero,
		Tok:  token.Token{Type: token.Number, Num: 7, Span: token.Span{Start: 0, End: 3}},
		Msg:  "decimal literal '007' has a leading zero",
	}}
	if diff := cmp.Diff(want, p.Warnings()); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}

	p = New("007", withFlags(t, "-Wno-leading-zero"))
	if _, err := p.ParseExpr(); err != nil {
		t.Fatal(err)
	}
	if len(p.Warnings()) != 0 {
		t.Errorf("got warnings %v with -Wno-leading-zero", p.Warnings())
	}
}

func TestParsePreproc(t *testing.T) {
	node, err := New(`#import "math"`, nil).ParsePreproc()
	if err != nil {
		t.Fatal(err)
	}
	if node.Type != ast.Directive || node.Span != (token.Span{Start: 0, End: 7}) {
		t.Fatalf("directive = %v at %v, want Directive at 0..7", node.Type, node.Span)
	}
	d := node.Data.(ast.DirectiveNode)
	if d.Preproc != token.Import {
		t.Errorf("preproc = %v, want import", d.Preproc)
	}
	if d.Path.Type != ast.StringLiteral || d.Path.Span != (token.Span{Start: 8, End: 14}) {
		t.Errorf("path = %v at %v, want StringLiteral at 8..14", d.Path.Type, d.Path.Span)
	}
	if v := d.Path.Data.(ast.StringLiteralNode).Value; v != "math" {
		t.Errorf("path value = %q, want math", v)
	}

	tests := []struct {
		src  string
		kind ErrorKind
		msg  string
		span token.Span
	}{
		{"#define X", SyntaxError, "'#define' is not supported; only '#import' is", token.Span{Start: 1, End: 7}},
		{"#frob", ScanError, "'frob' is not a preprocessor keyword", token.Span{Start: 1, End: 5}},
		{"# import", ScanError, "expected a preprocessor keyword, found ' '", token.Span{Start: 1, End: 2}},
		{"#import", SyntaxError, "expected a quoted path after '#import', found end of input", token.Span{Start: 7, End: 7}},
		{"#import math", SyntaxError, "expected a quoted path after '#import', found identifier 'math'", token.Span{Start: 8, End: 12}},
		{`#import "open`, ScanError, "unterminated string literal", token.Span{Start: 8, End: 13}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := New(tt.src, nil).ParsePreproc()
			perr := asError(t, err)
			if perr.Kind != tt.kind || perr.Msg != tt.msg || perr.Span() != tt.span {
				t.Errorf("error = %v %q at %v, want %v %q at %v", perr.Kind, perr.Msg, perr.Span(), tt.kind, tt.msg, tt.span)
			}
		})
	}
}

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"pub mut x: i32 = 1 + 2", "(decl pub mut x : i32 = (+ 1 2))"},
		{"const y", "(decl const y)"},
		{"x: Point", "(decl x : Point)"},
		{"static z = f(1)", "(decl static z = (call f 1))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := New(tt.src, nil).ParseDeclaration()
			if err != nil {
				t.Fatalf("ParseDeclaration(%q): %v", tt.src, err)
			}
			if got := ast.String(node); got != tt.want {
				t.Errorf("ParseDeclaration(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	node, err := New("pub mut x", nil).ParseDeclaration()
	if err != nil {
		t.Fatal(err)
	}
	if node.Span != (token.Span{Start: 0, End: 9}) {
		t.Errorf("declaration span = %v, want 0..9", node.Span)
	}

	errTests := []struct {
		src string
		msg string
	}{
		{"pub 1", "expected a modifier or declaration name, found number literal"},
		{"mut x: fn", "expected a type after ':', found keyword 'fn'"},
		{"pub if", "expected a modifier or declaration name, found keyword 'if'"},
		{"const x = ;", "expected an expression, found ';'"},
	}
	for _, tt := range errTests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := New(tt.src, nil).ParseDeclaration()
			if perr := asError(t, err); perr.Msg != tt.msg {
				t.Errorf("error = %q, want %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestDuplicateModifier(t *testing.T) {
	p := New("pub mut pub x", nil)
	if _, err := p.ParseDeclaration(); err != nil {
		t.Fatal(err)
	}
	ws := p.Warnings()
	if len(ws) != 1 || ws[0].Kind != config.WarnDupModifier || ws[0].Tok.Span != (token.Span{Start: 8, End: 11}) {
		t.Errorf("warnings = %+v, want one dup-modifier at 8..11", ws)
	}
}

func TestIfErrorParseRestoresExactly(t *testing.T) {
	c := cursor.New("a b c", nil)
	c.Next()
	before := c.Checkpoint()

	var index, prev, consumed int
	got, err := IfErrorParse(c, func() (string, error) {
		c.Next()
		c.Next()
		return "", errors.New("no")
	}, func() (string, error) {
		index, prev, consumed = c.Index(), c.Prev(), c.Consumed()
		return "fallback", nil
	})
	if err != nil || got != "fallback" {
		t.Fatalf("IfErrorParse = %q, %v", got, err)
	}
	if index != before.Index() || prev != 0 || consumed != 1 {
		t.Errorf("fallback saw index/prev/consumed = %d/%d/%d, want %d/0/1", index, prev, consumed, before.Index())
	}

	// Success never runs the fallback
	got, err = IfErrorParse(c, func() (string, error) {
		c.Next()
		return "first", nil
	}, func() (string, error) {
		t.Error("fallback ran after success")
		return "", nil
	})
	if err != nil || got != "first" || c.Index() != 3 {
		t.Errorf("IfErrorParse = %q, %v at %d; want first at 3", got, err, c.Index())
	}
}

func TestParseSignature(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"foo", "(sig foo)"},
		{"{ a: i32, mut b }", "(sig-body (decl a : i32) (decl mut b))"},
		{"{x}", "(sig-body (decl x))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := New(tt.src, nil).ParseSignature()
			if err != nil {
				t.Fatalf("ParseSignature(%q): %v", tt.src, err)
			}
			if got := ast.String(node); got != tt.want {
				t.Errorf("ParseSignature(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	errTests := []struct {
		src string
		msg string
	}{
		{"42", "expected a signature name or '{', found number literal"},
		{"{ a, }", "expected a modifier or declaration name, found '}'"},
		{"{ a b }", "expected ',' or '}' in signature body, found identifier 'b'"},
	}
	for _, tt := range errTests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := New(tt.src, nil).ParseSignature()
			if perr := asError(t, err); perr.Msg != tt.msg {
				t.Errorf("error = %q, want %q", perr.Msg, tt.msg)
			}
		})
	}
}

func TestParse(t *testing.T) {
	src := `#import "math"; pub x = 1 + 2; y = x * 3; f(y)`
	unit, err := New(src, nil).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := `(unit (#import "math") (decl pub x = (+ 1 2)) (= y (* x 3)) (call f y))`
	if got := ast.String(unit); got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}
	if unit.Span != (token.Span{Start: 0, End: len(src)}) {
		t.Errorf("unit span = %v", unit.Span)
	}
}

func TestParseRecovers(t *testing.T) {
	unit, err := New("1 + ; 2; ) 3", nil).Parse()
	want := `(unit (+ 1 (error "expected an expression, found ';'")) 2 (error "expected an expression, found ')'"))`
	if got := ast.String(unit); got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}

	var errs ErrorList
	if !errors.As(err, &errs) || len(errs) != 2 {
		t.Fatalf("err = %v, want an ErrorList of 2", err)
	}
	if got := errs[0].Error(); got != "4..5: syntax error: expected an expression, found ';'" {
		t.Errorf("errs[0] = %q", got)
	}
	if got := err.Error(); got != "4..5: syntax error: expected an expression, found ';' (and 1 more errors)" {
		t.Errorf("err = %q", got)
	}
	asError(t, err)
}

func TestPartialTrees(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * ;", `(+ 1 (* 2 (error "expected an expression, found ';'")))`},
		{"-", `(- (error "expected an expression, found end of input"))`},
		{"x = 1 +", `(= x (+ 1 (error "expected an expression, found end of input")))`},
		{"1 = 2", "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, err := New(tt.src, nil).ParseExpr()
			if err == nil {
				t.Fatalf("ParseExpr(%q) succeeded", tt.src)
			}
			if got := ast.String(node); got != tt.want {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}

	unit, _ := New("pub x = 1 *", nil).Parse()
	want := `(unit (decl pub x = (* 1 (error "expected an expression, found end of input"))))`
	if got := ast.String(unit); got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}
}

func TestParseUnmodifiedDeclaration(t *testing.T) {
	unit, err := New("x: i32 = 1; y = x; z: Point", nil).Parse()
	if err != nil {
		t.Fatal(err)
	}
	want := "(unit (decl x : i32 = 1) (= y x) (decl z : Point))"
	if got := ast.String(unit); got != want {
		t.Errorf("Parse = %s, want %s", got, want)
	}
}

func TestParseTokenLimit(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		limit int
		want  string
		span  token.Span
	}{
		{"between items", "a; b; c; d", 3, `(unit a b (error "token limit of 3 exceeded"))`, token.Span{Start: 4, End: 5}},
		{"long expression", "1 + 2 + 3 + 4 + 5 + 6 + 7", 3, `(unit (+ 1 2) (error "token limit of 3 exceeded"))`, token.Span{Start: 6, End: 7}},
		{"inside operator", "1 + 2", 2, `(unit (+ 1 (error "token limit of 2 exceeded")))`, token.Span{Start: 4, End: 5}},
		{"last item", "a; b c", 3, `(unit a b (error "token limit of 3 exceeded"))`, token.Span{Start: 5, End: 6}},
		{"directive", "#import \"m\"", 1, `(unit (error "token limit of 1 exceeded"))`, token.Span{Start: 1, End: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.MaxTokens = tt.limit
			p := New(tt.src, cfg)
			unit, err := p.Parse()
			if got := ast.String(unit); got != tt.want {
				t.Errorf("Parse = %s, want %s", got, tt.want)
			}
			perr := asError(t, err)
			if perr.Kind != LimitError || perr.Span() != tt.span {
				t.Errorf("error = %v at %v, want limit error at %v", perr.Kind, perr.Span(), tt.span)
			}
			if n := p.Cursor().Consumed(); n > tt.limit {
				t.Errorf("consumed %d tokens past a limit of %d", n, tt.limit)
			}
		})
	}

	// Reaching the limit exactly at the end is not an error
	cfg := config.NewConfig()
	cfg.MaxTokens = 3
	if _, err := New("1 + 2", cfg).Parse(); err != nil {
		t.Errorf("Parse at the exact limit: %v", err)
	}
}

func TestParseWarnings(t *testing.T) {
	p := New("pub pub x = 007", nil)
	if _, err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	var kinds []config.Warning
	for _, w := range p.Warnings() {
		kinds = append(kinds, w.Kind)
	}
	if diff := cmp.Diff([]config.Warning{config.WarnDupModifier, config.WarnLeadingZero}, kinds); diff != "" {
		t.Errorf("warning kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorListErr(t *testing.T) {
	var l ErrorList
	if l.Err() != nil {
		t.Error("empty ErrorList.Err() != nil")
	}
	_, err := New("", nil).Parse()
	if err != nil {
		t.Errorf("Parse of empty source = %v", err)
	}
}
