// Package cursor tracks the scan position of a single parse.
package cursor

import (
	"fmt"

	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/lexer"
	"github.com/xplshn/tpa/pkg/token"
)

// Cursor wraps a Scanner with an absolute byte offset. It keeps one level
// of undo in prev; 0 <= prev <= index <= len(src) always holds.
type Cursor struct {
	src      string
	index    int
	prev     int
	consumed int
	limit    int
	scanner  *lexer.Scanner
}

// Checkpoint is a saved cursor position.
type Checkpoint struct {
	index    int
	prev     int
	consumed int
}

// Index reports the offset the checkpoint was taken at.
func (cp Checkpoint) Index() int { return cp.index }

// New creates a Cursor over src. A positive cfg.MaxTokens caps how many
// tokens Next and Expect will consume.
func New(src string, cfg *config.Config) *Cursor {
	c := &Cursor{src: src, scanner: lexer.NewScanner(cfg)}
	if cfg != nil {
		c.limit = cfg.MaxTokens
	}
	return c
}

func (c *Cursor) Source() string          { return c.src }
func (c *Cursor) Index() int              { return c.index }
func (c *Cursor) Prev() int               { return c.prev }
func (c *Cursor) Rest() string            { return c.src[c.index:] }
func (c *Cursor) AtEOF() bool             { return c.Peek().Type == token.EOF }
func (c *Cursor) Consumed() int           { return c.consumed }
func (c *Cursor) Scanner() *lexer.Scanner { return c.scanner }

// Peek returns the next significant token without moving index. Once the
// token limit is spent, any token other than EOF reads as an ErrTokenLimit
// error spanning it.
func (c *Cursor) Peek() token.Token {
	pos := c.index
	for {
		tok := c.scanner.Scan(c.src, pos)
		if !tok.IsTrivia() {
			return c.limited(tok)
		}
		pos = tok.Span.End
	}
}

func (c *Cursor) limited(tok token.Token) token.Token {
	if c.limit <= 0 || c.consumed < c.limit || tok.Type == token.EOF {
		return tok
	}
	return token.Token{
		Type:  token.Error,
		Err:   token.ErrTokenLimit,
		Value: fmt.Sprintf("token limit of %d exceeded", c.limit),
		Span:  tok.Span,
	}
}

// Next consumes the next significant token. A limit error is returned
// without moving.
func (c *Cursor) Next() token.Token {
	tok := c.Peek()
	if tok.Err == token.ErrTokenLimit {
		return tok
	}
	c.prev = c.index
	c.index = tok.Span.End
	if tok.Type != token.EOF {
		c.consumed++
	}
	return tok
}

// Expect runs scan exactly at index, without skipping whitespace, and
// advances past whatever it produced.
func (c *Cursor) Expect(scan lexer.ScanFunc) token.Token {
	tok := c.limited(scan(c.src, c.index))
	if tok.Err == token.ErrTokenLimit {
		return tok
	}
	c.Adv(tok.Len())
	if tok.Type != token.EOF {
		c.consumed++
	}
	return tok
}

// Adv moves index forward by n bytes and remembers where it was.
func (c *Cursor) Adv(n int) {
	c.prev = c.index
	c.index += n
	if c.index > len(c.src) {
		c.index = len(c.src)
	}
}

// SkipEmpty moves past contiguous whitespace and comments. prev is left
// untouched so a following Reset still undoes the last advance.
func (c *Cursor) SkipEmpty() {
	for {
		tok := c.scanner.Scan(c.src, c.index)
		if !tok.IsTrivia() {
			return
		}
		c.index = tok.Span.End
	}
}

// Reset undoes the last advance and re-skips whitespace.
func (c *Cursor) Reset() {
	c.index = c.prev
	c.SkipEmpty()
}

func (c *Cursor) Checkpoint() Checkpoint {
	return Checkpoint{index: c.index, prev: c.prev, consumed: c.consumed}
}

// Restore reinstates cp exactly.
func (c *Cursor) Restore(cp Checkpoint) {
	c.index, c.prev, c.consumed = cp.index, cp.prev, cp.consumed
}
