package lexer

import (
	"iter"
	"unicode"
	"unicode/utf8"

	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/token"
)

// Lexer is a pull iterator over the significant tokens of one source.
type Lexer struct {
	src        string
	pos        int
	cfg        *config.Config
	scanner    *Scanner
	afterPound bool
}

func New(src string, cfg *config.Config) *Lexer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Lexer{src: src, cfg: cfg, scanner: NewScanner(cfg)}
}

// Next returns the next non-trivia token. Once the input is exhausted it
// keeps returning EOF.
func (l *Lexer) Next() token.Token {
	for {
		var tok token.Token
		if l.afterPound && l.startsWord() {
			tok = l.scanner.ScanDirective(l.src, l.pos)
		} else {
			tok = l.scanner.Scan(l.src, l.pos)
		}
		l.afterPound = false
		l.pos = tok.Span.End

		if tok.IsTrivia() {
			continue
		}
		if tok.Type == token.Pound && l.cfg.IsFeatureEnabled(config.FeatDirectives) {
			l.afterPound = true
		}
		return tok
	}
}

// All yields tokens up to and including EOF.
func (l *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Type == token.EOF {
				return
			}
		}
	}
}

func (l *Lexer) startsWord() bool {
	if l.pos >= len(l.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return unicode.IsLetter(r)
}

// Tokenize collects the significant tokens of src, ending with EOF.
func Tokenize(src string, cfg *config.Config) []token.Token {
	var toks []token.Token
	for tok := range New(src, cfg).All() {
		toks = append(toks, tok)
	}
	return toks
}
