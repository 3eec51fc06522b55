package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/xplshn/tpa/pkg/config"
	"github.com/xplshn/tpa/pkg/golden"
)

var log = commonlog.GetLogger("tpatest")

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

var errFailures = errors.New("some tests failed")

type globalOptions struct {
	jsonDir    string
	configFile string
	verbose    int
}

func main() {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:           "tpatest",
		Short:         "Golden-file test runner for the tpa parser",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(1+opts.verbose, nil)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.jsonDir, "dir", "", "directory to store/read golden JSON files (defaults to the source file dir)")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "TOML or YAML configuration applied to every parse")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newRunCmd(&opts))
	rootCmd.AddCommand(newGoldenCmd(&opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintf(os.Stderr, "%s[ERROR]%s %v\n", cRed, cNone, err)
		}
		stop()
		os.Exit(1)
	}
}

func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if o.configFile == "" {
		return cfg, nil
	}
	if err := cfg.Load(o.configFile); err != nil {
		return nil, err
	}
	log.Infof("loaded configuration from %s", o.configFile)
	return cfg, nil
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		jobs       int
		skipFiles  []string
		outputJSON string
	)

	cmd := &cobra.Command{
		Use:   "run [patterns...]",
		Short: "Parse every test file and compare it with its golden snapshot",
		Long: `Parse every file matching the glob patterns in-process and compare the
tokens, tree, errors and warnings with the recorded .<file>.json snapshot.

Examples:
  tpatest run
  tpatest run -j 8 'testdata/*.tp'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"testdata/*.tp"}
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			files, err := golden.ExpandGlobs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("No test files found matching the pattern(s).")
				return nil
			}

			skip := make(map[string]bool)
			for _, f := range skipFiles {
				if abs, err := filepath.Abs(f); err == nil {
					skip[abs] = true
				}
			}
			log.Debugf("running %d files on %d jobs", len(files), jobs)
			results := golden.RunAll(cmd.Context(), files, jobs, func(file string) *golden.Result {
				if skip[file] {
					return &golden.Result{File: file, Status: golden.Skip, Message: "explicitly skipped"}
				}
				return golden.Check(file, opts.jsonDir, cfg)
			})

			printSummary(results)
			if outputJSON != "" {
				if err := writeJSONReport(outputJSON, results); err != nil {
					return err
				}
				fmt.Printf("Full test report saved to %s\n", outputJSON)
			}
			if golden.Failed(results) {
				return errFailures
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "number of parallel test jobs")
	cmd.Flags().StringSliceVar(&skipFiles, "skip", nil, "files to skip")
	cmd.Flags().StringVarP(&outputJSON, "output", "o", "", "write a JSON test report to this file")
	return cmd
}

func newGoldenCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "golden <file>...",
		Short: "Record golden snapshots for the given source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			for _, file := range args {
				src, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("could not read %s: %w", file, err)
				}
				path := golden.Path(file, opts.jsonDir)
				if err := golden.Write(path, golden.Take(string(src), cfg)); err != nil {
					return fmt.Errorf("failed to write golden file %s: %w", path, err)
				}
				fmt.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, path)
			}
			return nil
		},
	}
}

func printSummary(results []*golden.Result) {
	var passed, failed, skipped, errored int
	for _, r := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, r.File, cNone)
		switch r.Status {
		case golden.Pass:
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, r.Message)
		case golden.Fail:
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, r.Message)
			fmt.Print(formatDiff(r.Diff))
		case golden.Skip:
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, r.Message)
		case golden.Error:
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, r.Message)
		}
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-"):
			sb.WriteString(cRed)
		case strings.HasPrefix(trimmed, "+"):
			sb.WriteString(cGreen)
		}
		sb.WriteString("    " + line + cNone + "\n")
	}
	return sb.String()
}

func writeJSONReport(path string, results []*golden.Result) error {
	byFile := make(map[string]*golden.Result, len(results))
	for _, r := range results {
		byFile[r.File] = r
	}
	data, err := json.MarshalIndent(byFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
