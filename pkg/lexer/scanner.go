package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/token"
)

// ScanFunc produces the single lexeme starting at pos.
type ScanFunc func(src string, pos int) token.Token

// Scanner classifies one lexeme at a time. It holds no position of its own.
type Scanner struct {
	cfg *config.Config
}

func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Scanner{cfg: cfg}
}

// opRule is one node of the compound operator table: the operator produced
// so far and the candidates that promote it, tried in order.
type opRule struct {
	next  byte
	op    token.Op
	promo []opRule
}

var opTable = map[byte]opRule{
	'+': {'+', token.Add, []opRule{{'=', token.AddAs, nil}, {'+', token.Inc, nil}}},
	'-': {'-', token.Sub, []opRule{{'=', token.SubAs, nil}, {'-', token.Dec, nil}}},
	'*': {'*', token.Mul, []opRule{{'=', token.MulAs, nil}}},
	'/': {'/', token.Div, []opRule{{'=', token.DivAs, nil}}},
	'%': {'%', token.Mod, []opRule{{'=', token.ModAs, nil}}},
	'^': {'^', token.Xor, []opRule{{'=', token.XorAs, nil}}},
	'~': {'~', token.Not, []opRule{{'=', token.NotAs, nil}}},
	'!': {'!', token.NotLog, []opRule{{'=', token.NotEq, nil}}},
	'=': {'=', token.As, []opRule{{'=', token.EqEq, nil}}},
	'&': {'&', token.And, []opRule{{'=', token.AndAs, nil}, {'&', token.AndLog, nil}}},
	'|': {'|', token.Or, []opRule{{'=', token.OrAs, nil}, {'|', token.OrLog, nil}}},
	'<': {'<', token.Lt, []opRule{{'=', token.LtEq, nil}, {'<', token.Shl, []opRule{{'=', token.ShlAs, nil}}}}},
	'>': {'>', token.Gt, []opRule{{'=', token.GtEq, nil}, {'>', token.Shr, []opRule{{'=', token.ShrAs, nil}}}}},
}

var escapes = map[byte]rune{
	'n': '\n', 't': '\t', 'r': '\r', '\\': '\\', '"': '"', '\'': '\'', '0': 0,
}

func makeToken(typ token.Type, start, end int) token.Token {
	return token.Token{Type: typ, Span: token.Span{Start: start, End: end}}
}

func errorToken(kind token.ErrorKind, start, end int, format string, args ...interface{}) token.Token {
	if end <= start {
		end = start + 1
	}
	tok := makeToken(token.Error, start, end)
	tok.Err = kind
	tok.Value = fmt.Sprintf(format, args...)
	return tok
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Scan produces the next lexeme at pos. At the end of src it returns an
// empty EOF token; otherwise the token always covers at least one byte.
func (s *Scanner) Scan(src string, pos int) token.Token {
	if pos >= len(src) {
		return makeToken(token.EOF, len(src), len(src))
	}

	c := src[pos]
	switch {
	case isSpace(c):
		end := pos + 1
		for end < len(src) && isSpace(src[end]) {
			end++
		}
		return makeToken(token.Empty, pos, end)
	case c == '/' && pos+1 < len(src) && src[pos+1] == '/' && s.cfg.IsFeatureEnabled(config.FeatCComments):
		end := pos + 2
		for end < len(src) && src[end] != '\n' {
			end++
		}
		return makeToken(token.Comment, pos, end)
	case c == '"':
		return scanString(src, pos)
	case c == '\'':
		return scanChar(src, pos)
	case isDigit(c):
		return scanNumber(src, pos)
	}

	if typ, ok := token.Punctuation[c]; ok {
		return makeToken(typ, pos, pos+1)
	}
	if rule, ok := opTable[c]; ok {
		op, n := munchOp(src, pos, rule)
		tok := makeToken(token.Operator, pos, pos+n)
		tok.Op = op
		return tok
	}

	r, size := utf8.DecodeRuneInString(src[pos:])
	if unicode.IsLetter(r) {
		word := scanWord(src, pos)
		if kw, ok := token.LookupKeyword(word); ok {
			tok := makeToken(token.Keyword, pos, pos+len(word))
			tok.Keyword = kw
			return tok
		}
		tok := makeToken(token.Ident, pos, pos+len(word))
		tok.Value = word
		return tok
	}
	return errorToken(token.ErrInvalidChar, pos, pos+size, "invalid character %q", r)
}

// ScanDirective reads a preprocessor keyword directly at pos.
func (s *Scanner) ScanDirective(src string, pos int) token.Token {
	if pos >= len(src) {
		return makeToken(token.EOF, len(src), len(src))
	}
	r, size := utf8.DecodeRuneInString(src[pos:])
	if !unicode.IsLetter(r) {
		return errorToken(token.ErrUnknownDirective, pos, pos+size, "expected a preprocessor keyword, found %q", r)
	}
	word := scanWord(src, pos)
	p, ok := token.LookupPreproc(word)
	if !ok {
		return errorToken(token.ErrUnknownDirective, pos, pos+len(word), "'%s' is not a preprocessor keyword", word)
	}
	tok := makeToken(token.Directive, pos, pos+len(word))
	tok.Preproc = p
	return tok
}

// ScanQuoted reads a string literal at pos, or whatever token is there
// instead so the caller can report it.
func (s *Scanner) ScanQuoted(src string, pos int) token.Token {
	if pos < len(src) && src[pos] == '"' {
		return scanString(src, pos)
	}
	return s.Scan(src, pos)
}

// ScanAll returns every raw token of src, trivia included, ending with EOF.
func (s *Scanner) ScanAll(src string) []token.Token {
	var toks []token.Token
	for pos := 0; ; {
		tok := s.Scan(src, pos)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
		pos = tok.Span.End
	}
}

func munchOp(src string, pos int, rule opRule) (token.Op, int) {
	op, n := rule.op, 1
	promo := rule.promo
	for {
		matched := false
		for _, p := range promo {
			if pos+n < len(src) && src[pos+n] == p.next {
				op, promo = p.op, p.promo
				n++
				matched = true
				break
			}
		}
		if !matched {
			return op, n
		}
	}
}

func scanWord(src string, pos int) string {
	end := pos
	for end < len(src) {
		r, size := utf8.DecodeRuneInString(src[end:])
		if end == pos {
			if !unicode.IsLetter(r) {
				break
			}
		} else if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			break
		}
		end += size
	}
	return src[pos:end]
}

func scanNumber(src string, pos int) token.Token {
	typ, radix, digits := token.Number, 10, pos
	if src[pos] == '0' && pos+1 < len(src) {
		switch src[pos+1] {
		case 'x', 'X':
			typ, radix, digits = token.Hex, 16, pos+2
		case 'b', 'B':
			typ, radix, digits = token.Binary, 2, pos+2
		}
	}

	end := digits
	for end < len(src) && isAlnum(src[end]) {
		end++
	}
	text := src[digits:end]
	if text == "" {
		return errorToken(token.ErrMalformedNumber, pos, end, "%s literal has no digits", typ)
	}

	val, err := strconv.ParseUint(text, radix, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return errorToken(token.ErrMalformedNumber, pos, end, "integer constant overflow: %s", src[pos:end])
		}
		return errorToken(token.ErrMalformedNumber, pos, end, "invalid %s literal: %s", typ, src[pos:end])
	}
	tok := makeToken(typ, pos, end)
	tok.Num = val
	return tok
}

func escapeError(e rune) string {
	if e == 'x' || e == 'u' {
		return fmt.Sprintf("unsupported escape sequence '\\%c'", e)
	}
	return fmt.Sprintf("unknown escape sequence '\\%c'", e)
}

func scanString(src string, pos int) token.Token {
	var sb strings.Builder
	badEscape := ""
	for i := pos + 1; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			if badEscape != "" {
				return errorToken(token.ErrUnknownEscape, pos, i+1, "%s", badEscape)
			}
			tok := makeToken(token.String, pos, i+1)
			tok.Value = sb.String()
			return tok
		case c == '\\':
			if i+1 >= len(src) {
				i = len(src)
				continue
			}
			e, size := utf8.DecodeRuneInString(src[i+1:])
			if r, ok := escapes[src[i+1]]; ok {
				sb.WriteRune(r)
			} else if badEscape == "" {
				badEscape = escapeError(e)
			}
			i += 1 + size
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return errorToken(token.ErrUnterminated, pos, len(src), "unterminated string literal")
}

func scanChar(src string, pos int) token.Token {
	i := pos + 1
	if i >= len(src) || src[i] == '\n' {
		return errorToken(token.ErrUnterminated, pos, i, "unterminated character literal")
	}

	var val rune
	badEscape := ""
	switch src[i] {
	case '\'':
		return errorToken(token.ErrEmptyChar, pos, i+1, "empty character literal")
	case '\\':
		if i+1 >= len(src) {
			return errorToken(token.ErrUnterminated, pos, len(src), "unterminated character literal")
		}
		e, size := utf8.DecodeRuneInString(src[i+1:])
		r, ok := escapes[src[i+1]]
		if !ok {
			badEscape = escapeError(e)
		}
		val, i = r, i+1+size
	default:
		r, size := utf8.DecodeRuneInString(src[i:])
		val, i = r, i+size
	}

	if i < len(src) && src[i] == '\'' {
		if badEscape != "" {
			return errorToken(token.ErrUnknownEscape, pos, i+1, "%s", badEscape)
		}
		tok := makeToken(token.Char, pos, i+1)
		tok.Char = val
		return tok
	}

	end := i
	for end < len(src) && src[end] != '\'' && src[end] != '\n' {
		end++
	}
	if end < len(src) && src[end] == '\'' {
		return errorToken(token.ErrLongChar, pos, end+1, "character literal holds more than one character")
	}
	return errorToken(token.ErrUnterminated, pos, end, "unterminated character literal")
}
