package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goforj/godump"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/xplshn/tpa/pkg/ast"
	"github.com/xplshn/tpa/pkg/cli"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/lexer"
	"github.com/xplshn/tpa/pkg/parser"
	"github.com/xplshn/tpa/pkg/util"
)

var log = commonlog.GetLogger("tpa")

// errHadErrors marks a run where some input did not parse cleanly; the
// diagnostics have already been printed.
var errHadErrors = errors.New("errors were reported")

type options struct {
	tokens    bool
	dumpAST   bool
	sexpr     bool
	imports   bool
	listFlags bool
	cfgFiles  []string
	includes  []string
	maxTokens int
	verbose   int
}

func main() {
	app := cli.NewApp("tpa")
	app.Synopsis = "[options] <input.tp> ..."
	app.Description = "Tokenize and parse sources of a small C-like language, reporting diagnostics and dumping tokens or the expression tree."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/tpa>"

	var opts options
	fs := app.FlagSet
	fs.Bool(&opts.tokens, "tokens", "t", false, "Print every token with its span.")
	fs.Bool(&opts.dumpAST, "dump-ast", "d", false, "Dump the parsed tree structure.")
	fs.Bool(&opts.sexpr, "sexpr", "s", false, "Print the parsed tree as an S-expression.")
	fs.Bool(&opts.imports, "imports", "", false, "List the paths named by #import directives.")
	fs.Bool(&opts.listFlags, "list-flags", "", false, "Print the state of every feature and warning, then exit.")
	fs.List(&opts.cfgFiles, "config", "c", nil, "Load features, warnings and limits from a TOML or YAML <file>; repeat to layer files in order.", "file")
	fs.Special(&opts.includes, "I", "Search <dir> when resolving the paths listed by --imports.", "dir")
	fs.Int(&opts.maxTokens, "max-tokens", "", 0, "Stop parsing a file after <n> tokens (0 means no limit).", "n")
	fs.Count(&opts.verbose, "verbose", "v", "Increase log verbosity; repeat for more.")

	cfg := config.NewConfig()
	groups := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		commonlog.Configure(1+opts.verbose, nil)

		for _, file := range opts.cfgFiles {
			if err := cfg.Load(file); err != nil {
				return err
			}
			log.Infof("loaded configuration from %s", file)
		}
		// Command line switches override the config file
		groups.Apply(cfg)
		if opts.maxTokens < 0 {
			return fmt.Errorf("--max-tokens must be non-negative, got %d", opts.maxTokens)
		}
		if opts.maxTokens > 0 {
			cfg.MaxTokens = opts.maxTokens
		}

		if opts.listFlags {
			fmt.Println("Features:")
			util.PrintFeatures(os.Stdout, cfg)
			fmt.Println("Warnings:")
			util.PrintWarnings(os.Stdout, cfg)
			return nil
		}
		if len(inputFiles) == 0 {
			return errors.New("no input files specified")
		}

		failed := false
		for _, file := range inputFiles {
			ok, err := processFile(file, cfg, opts)
			if err != nil {
				return err
			}
			failed = failed || !ok
		}
		if failed {
			return errHadErrors
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		if !errors.Is(err, errHadErrors) && !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "tpa: %v\n", err)
		}
		os.Exit(1)
	}
}

// processFile reports whether file parsed without errors.
func processFile(file string, cfg *config.Config, opts options) (bool, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return false, fmt.Errorf("error reading file %s: %w", file, err)
	}
	src := string(content)
	log.Debugf("processing %s (%d bytes)", file, len(src))

	if opts.tokens {
		for _, tok := range lexer.Tokenize(src, cfg) {
			fmt.Printf("%-10s %s\n", tok.Span, tok)
		}
	}

	p := parser.New(src, cfg)
	unit, err := p.Parse()

	rep := util.NewReporter(os.Stderr, file, src)
	for _, w := range p.Warnings() {
		rep.Warn(cfg.Warnings[w.Kind].Name, w.Tok.Span, "%s", w.Msg)
	}
	var errs parser.ErrorList
	if errors.As(err, &errs) {
		for _, e := range errs {
			rep.Error(e.Span(), "%s", e.Msg)
		}
	}

	if opts.sexpr {
		fmt.Println(ast.String(unit))
	}
	if opts.dumpAST {
		godump.Dump(unit)
	}
	if opts.imports {
		for _, path := range importPaths(unit) {
			switch resolved, ok := resolveImport(path, opts.includes); {
			case len(opts.includes) == 0:
				fmt.Println(path)
			case ok:
				fmt.Printf("%s -> %s\n", path, resolved)
			default:
				fmt.Printf("%s (not found)\n", path)
			}
		}
	}

	log.Infof("%s: %d items, %d errors, %d warnings", file, len(unit.Data.(ast.UnitNode).Items), rep.Errors(), rep.Warnings())
	return rep.Errors() == 0, nil
}

func importPaths(unit *ast.Node) []string {
	var paths []string
	ast.Walk(unit, func(n *ast.Node) bool {
		if d, ok := n.Data.(ast.DirectiveNode); ok {
			paths = append(paths, d.Path.Data.(ast.StringLiteralNode).Value)
			return false
		}
		return true
	})
	return paths
}

// resolveImport looks for path in each of dirs in order, as given and then
// with a .tp extension.
func resolveImport(path string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		for _, name := range []string{path, path + ".tp"} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, true
			}
		}
	}
	return "", false
}
