package util

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/token"
	"golang.org/x/term"
)

// LineIndex converts byte offsets of one source into 1-based line and
// column numbers. Columns count runes, not bytes.
type LineIndex struct {
	src    string
	starts []int
}

func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

// Position returns the line and column of offset, clamped to the source.
func (li *LineIndex) Position(offset int) (line, col int) {
	offset = max(0, min(offset, len(li.src)))
	i := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return i + 1, utf8.RuneCountInString(li.src[li.starts[i]:offset]) + 1
}

// Line returns the text of the 1-based line n without its newline.
func (li *LineIndex) Line(n int) string {
	if n < 1 || n > len(li.starts) {
		return ""
	}
	start, end := li.starts[n-1], len(li.src)
	if n < len(li.starts) {
		end = li.starts[n] - 1
	}
	return strings.TrimSuffix(li.src[start:end], "\r")
}

// Reporter prints gcc-style diagnostics for one source file.
type Reporter struct {
	w        io.Writer
	name     string
	index    *LineIndex
	color    bool
	errors   int
	warnings int
}

// NewReporter colours its output only when w is a terminal.
func NewReporter(w io.Writer, name, src string) *Reporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Reporter{w: w, name: name, index: NewLineIndex(src), color: color}
}

func (r *Reporter) SetColor(enabled bool) { r.color = enabled }
func (r *Reporter) Errors() int           { return r.errors }
func (r *Reporter) Warnings() int         { return r.warnings }

func (r *Reporter) paint(code, s string) string {
	if !r.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// printErrorLine prints the source line and a caret under the span
func (r *Reporter) printErrorLine(span token.Span) {
	line, col := r.index.Position(span.Start)
	text := r.index.Line(line)
	fmt.Fprintf(r.w, "  %s\n", text)

	// Underline no further than the end of the first line
	width := utf8.RuneCountInString(text) - (col - 1)
	src := r.index.src
	start := max(0, min(span.Start, len(src)))
	if n := utf8.RuneCountInString(src[start:max(start, min(span.End, len(src)))]); n < width {
		width = n
	}
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(r.w, "  %s%s\n", strings.Repeat(" ", col-1), r.paint("32", marker))
}

// Error prints an error located at span.
func (r *Reporter) Error(span token.Span, format string, args ...interface{}) {
	r.errors++
	line, col := r.index.Position(span.Start)
	fmt.Fprintf(r.w, "%s:%d:%d: %s ", r.name, line, col, r.paint("31", "error:"))
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintln(r.w)
	r.printErrorLine(span)
}

// Warn prints a warning located at span, tagged with its -W switch.
func (r *Reporter) Warn(name string, span token.Span, format string, args ...interface{}) {
	r.warnings++
	line, col := r.index.Position(span.Start)
	fmt.Fprintf(r.w, "%s:%d:%d: %s ", r.name, line, col, r.paint("33", "warning:"))
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintf(r.w, " [-W%s]\n", name)
	r.printErrorLine(span)
}

// PrintFeatures prints the current status of all features
func PrintFeatures(w io.Writer, cfg *config.Config) {
	for i := config.Feature(0); i < config.FeatCount; i++ {
		info := cfg.Features[i]
		fmt.Fprintf(w, "  - %-20s: %v (%s)\n", info.Name, info.Enabled, info.Description)
	}
}

// PrintWarnings prints the current status of all warnings.
func PrintWarnings(w io.Writer, cfg *config.Config) {
	for i := config.Warning(0); i < config.WarnCount; i++ {
		info := cfg.Warnings[i]
		fmt.Fprintf(w, "  - %-20s: %v (%s)\n", info.Name, info.Enabled, info.Description)
	}
}
