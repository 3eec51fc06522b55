package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Feature int

const (
	FeatCComments Feature = iota
	FeatDirectives
	FeatCompareOps
	FeatAssignOps
	FeatCount
)

type Warning int

const (
	WarnLeadingZero Warning = iota
	WarnDupModifier
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	// MaxTokens bounds a single parse; zero means unlimited.
	MaxTokens int
}

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
	}

	features := map[Feature]Info{
		FeatCComments:  {"c-comments", true, "Recognize C-style '//' line comments."},
		FeatDirectives: {"directives", true, "Scan preprocessor keywords directly after '#' in the token stream."},
		FeatCompareOps: {"compare-ops", false, "Give comparison and logical operators binding power in expressions."},
		FeatAssignOps:  {"assign-ops", true, "Parse assignment operators like '=' and '+=' in expressions."},
	}

	warnings := map[Warning]Info{
		WarnLeadingZero: {"leading-zero", true, "Warn on decimal literals with a leading zero."},
		WarnDupModifier: {"dup-modifier", true, "Warn when a declaration repeats a modifier."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, enabled)
	}
}

// ApplyFlag applies a single -F/-W style switch such as "-Fno-c-comments".
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var name string
	var isWarning bool

	switch {
	case strings.HasPrefix(trimmed, "W"):
		name, isWarning = strings.TrimPrefix(trimmed, "W"), true
	case strings.HasPrefix(trimmed, "F"):
		name = strings.TrimPrefix(trimmed, "F")
	default:
		return fmt.Errorf("unrecognized flag '%s'", flag)
	}
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	if isWarning {
		if name == "all" {
			c.SetAllWarnings(enable)
			return nil
		}
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}
	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}

// File is the on-disk shape of a configuration file.
type File struct {
	MaxTokens int             `toml:"max_tokens" yaml:"max_tokens"`
	Features  map[string]bool `toml:"features" yaml:"features"`
	Warnings  map[string]bool `toml:"warnings" yaml:"warnings"`
}

// Load reads a TOML or YAML file, picked by extension, and applies it to c.
func (c *Config) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &f); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(content, &f); err != nil {
			return fmt.Errorf("TOML parse error in %s: %w", path, err)
		}
	}
	return c.apply(f)
}

func (c *Config) apply(f File) error {
	if f.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d", f.MaxTokens)
	}
	if f.MaxTokens > 0 {
		c.MaxTokens = f.MaxTokens
	}
	for name, enabled := range f.Features {
		ft, ok := c.FeatureMap[name]
		if !ok {
			return fmt.Errorf("unknown feature '%s'", name)
		}
		c.SetFeature(ft, enabled)
	}
	for name, enabled := range f.Warnings {
		wt, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(wt, enabled)
	}
	return nil
}
