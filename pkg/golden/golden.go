// Package golden records parse results as JSON snapshots and compares fresh
// parses against them.
package golden

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/xplshn/tpa/pkg/ast"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/lexer"
	"github.com/xplshn/tpa/pkg/parser"
)

// Snapshot is the recorded outcome of tokenizing and parsing one source.
type Snapshot struct {
	Hash     string   `json:"hash"`
	Tokens   []string `json:"tokens"`
	Tree     string   `json:"tree"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type Status string

const (
	Pass  Status = "PASS"
	Fail  Status = "FAIL"
	Skip  Status = "SKIP"
	Error Status = "ERROR"
)

type Result struct {
	File    string `json:"file"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Diff    string `json:"diff,omitempty"`
}

// Hash is the xxhash fingerprint of src in hex.
func Hash(src []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(src))
}

// Take tokenizes and parses src in-process. A nil cfg uses the defaults.
func Take(src string, cfg *config.Config) *Snapshot {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	snap := &Snapshot{Hash: Hash([]byte(src))}
	for _, tok := range lexer.Tokenize(src, cfg) {
		snap.Tokens = append(snap.Tokens, fmt.Sprintf("%s %s", tok.Span, tok))
	}

	p := parser.New(src, cfg)
	unit, err := p.Parse()
	snap.Tree = ast.String(unit)

	var errs parser.ErrorList
	if errors.As(err, &errs) {
		for _, e := range errs {
			snap.Errors = append(snap.Errors, e.Error())
		}
	}
	for _, w := range p.Warnings() {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: %s [-W%s]", w.Tok.Span, w.Msg, cfg.Warnings[w.Kind].Name))
	}
	return snap
}

// Path returns where the golden file of sourceFile lives: ".<name>.json"
// next to it, or inside dir when dir is set.
func Path(sourceFile, dir string) string {
	name := "." + filepath.Base(sourceFile) + ".json"
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(filepath.Dir(sourceFile), name)
}

func Read(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("could not parse golden file %s: %w", path, err)
	}
	return &snap, nil
}

func Write(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal golden data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Diff compares two snapshots, ignoring the source fingerprint.
func Diff(want, got *Snapshot) string {
	return cmp.Diff(want, got, cmpopts.IgnoreFields(Snapshot{}, "Hash"), cmpopts.EquateEmpty())
}

// Check parses file and compares it with its golden snapshot.
func Check(file, dir string, cfg *config.Config) *Result {
	src, err := os.ReadFile(file)
	if err != nil {
		return &Result{File: file, Status: Error, Message: fmt.Sprintf("could not read source: %v", err)}
	}
	want, err := Read(Path(file, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return &Result{File: file, Status: Skip, Message: "no golden file; record one with 'tpatest golden'"}
	}
	if err != nil {
		return &Result{File: file, Status: Error, Message: err.Error()}
	}

	got := Take(string(src), cfg)
	diff := Diff(want, got)
	switch {
	case want.Hash != got.Hash && diff != "":
		return &Result{File: file, Status: Fail, Message: "golden file is stale: the source changed since it was recorded", Diff: diff}
	case diff != "":
		return &Result{File: file, Status: Fail, Message: "parse output differs from golden file", Diff: diff}
	case want.Hash != got.Hash:
		return &Result{File: file, Status: Pass, Message: "output matches, but the golden hash is stale"}
	}
	return &Result{File: file, Status: Pass, Message: "output matches golden file"}
}

// RunAll applies check to every file on jobs workers. Files whose content is
// identical to an earlier one are skipped. Results are sorted by file.
func RunAll(ctx context.Context, files []string, jobs int, check func(string) *Result) []*Result {
	jobs = max(jobs, 1)
	tasks := make(chan string)
	results := make(chan *Result, len(files))
	var wg sync.WaitGroup

	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				results <- check(file)
			}
		}()
	}

	seen := make(map[string]string)
feed:
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			results <- &Result{File: file, Status: Error, Message: fmt.Sprintf("failed to read file for hashing: %v", err)}
			continue
		}
		h := Hash(src)
		if orig, ok := seen[h]; ok {
			results <- &Result{File: file, Status: Skip, Message: fmt.Sprintf("content is identical to %s", orig)}
			continue
		}
		seen[h] = file
		select {
		case tasks <- file:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()
	close(results)

	var all []*Result
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].File < all[j].File })
	return all
}

// Failed reports whether any result is a failure or an error.
func Failed(results []*Result) bool {
	for _, r := range results {
		if r.Status == Fail || r.Status == Error {
			return true
		}
	}
	return false
}

// ExpandGlobs resolves patterns to unique regular files.
func ExpandGlobs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil || seen[abs] {
				continue
			}
			if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
				files = append(files, abs)
				seen[abs] = true
			}
		}
	}
	return files, nil
}
