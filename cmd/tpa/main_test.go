package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/tpa/pkg/cli"
	"github.com/xplshn/tpa/pkg/parser"
)

func TestImportPaths(t *testing.T) {
	unit, err := parser.New("#import \"math\"\nx = 1;\n#import \"io/console\"", nil).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"math", "io/console"}, importPaths(unit)); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveImport(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	if err := os.MkdirAll(filepath.Join(second, "io"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{filepath.Join(first, "math.tp"), filepath.Join(second, "math.tp"), filepath.Join(second, "io", "console")} {
		if err := os.WriteFile(f, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"math", filepath.Join(first, "math.tp"), true},
		{"io/console", filepath.Join(second, "io", "console"), true},
		{"io", "", false},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := resolveImport(tt.path, []string{first, second})
		if got != tt.want || ok != tt.ok {
			t.Errorf("resolveImport(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestImportFlags(t *testing.T) {
	var opts options
	fs := cli.NewFlagSet("tpa")
	fs.List(&opts.cfgFiles, "config", "c", nil, "", "file")
	fs.Special(&opts.includes, "I", "", "dir")
	if err := fs.Parse([]string{"-Ilib", "-c", "a.toml", "--config=b.yaml", "-Ivendor", "x.tp"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"lib", "vendor"}, opts.includes); diff != "" {
		t.Errorf("includes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.toml", "b.yaml"}, opts.cfgFiles); diff != "" {
		t.Errorf("config files mismatch (-want +got):\n%s", diff)
	}
}
