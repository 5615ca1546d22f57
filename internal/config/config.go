// Package config loads smellscan settings from .smellscan.kdl or
// .smellscan.toml. A global file in the home directory is merged under the
// project file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/smellscan/internal/rules"
)

// Config file names.
const (
	KDLFileName    = ".smellscan.kdl"
	TOMLFileName   = ".smellscan.toml"
	IgnoreFileName = ".smellignore"
)

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatText = "text"
)

// DefaultWatchDebounceMs is the quiet period before a watch re-run.
const DefaultWatchDebounceMs = 300

type Config struct {
	Version   int      `toml:"version"`
	Project   Project  `toml:"project"`
	Analysis  Analysis `toml:"analysis"`
	Rules     Rules    `toml:"rules"`
	Include   []string `toml:"include"`
	Exclude   []string `toml:"exclude"`
	Blacklist []string `toml:"blacklist"`
	Output    Output   `toml:"output"`
	Watch     Watch    `toml:"watch"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Analysis struct {
	MaxParameters     int  `toml:"max_parameters"`
	MaxFunctionLines  int  `toml:"max_function_lines"`
	HeadlineBlockSize int  `toml:"headline_block_size"`
	Workers           int  `toml:"workers"` // 0 = auto-detect
	SkipTests         bool `toml:"skip_tests"`
}

type Rules struct {
	Disable []string `toml:"disable"`
	Only    []string `toml:"only"`
}

type Output struct {
	Dir    string `toml:"dir"`
	Format string `toml:"format"` // csv, json or text
}

type Watch struct {
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Analysis: Analysis{
			MaxParameters:     rules.DefaultMaxParameters,
			MaxFunctionLines:  rules.DefaultMaxFunctionLines,
			HeadlineBlockSize: rules.DefaultHeadlineBlockSize,
			SkipTests:         true,
		},
		Output:  Output{Dir: ".", Format: FormatCSV},
		Watch:   Watch{DebounceMs: DefaultWatchDebounceMs},
		Include: []string{},
		Exclude: getDefaultExclusions(),
	}
}

func getDefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.vs/**",
		"**/bin/**",
		"**/obj/**",
		"**/packages/**",
		"**/node_modules/**",
	}
}

// Load reads the config file at path, or searches the working directory
// when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadWithRoot("", "")
	}
	return LoadFile(path)
}

// LoadFile reads a single config file; the format follows its extension.
// Relative roots resolve against the file's directory.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	dir := filepath.Dir(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = parseTOML(content, absDir(dir))
	} else {
		cfg, err = parseKDL(string(content), absDir(dir))
	}
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, dir)
	return cfg, nil
}

// LoadWithRoot merges ~/.smellscan.kdl (or .toml) under the project file
// found in rootDir. Without either file the defaults apply.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := loadDir(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := loadDir(searchDir)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		cfg = baseConfig
		cfg.Project.Root = absDir(searchDir)
	default:
		cfg = Default(absDir(searchDir))
	}
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// loadDir loads the KDL file of dir, falling back to the TOML file. It
// returns nil, nil when neither exists.
func loadDir(dir string) (*Config, error) {
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadFile(path)
	}
	return nil, nil
}

func resolveRoot(cfg *Config, dir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = absDir(dir)
		return
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(dir, cfg.Project.Root)
	}
	cfg.Project.Root = absDir(cfg.Project.Root)
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// mergeConfigs lays project over base. Exclusions and blacklist entries
// from both are kept; inclusions come from the project when it sets any.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	merged.Blacklist = DeduplicatePatterns(append(append([]string{}, base.Blacklist...), project.Blacklist...))
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Rules.Disable) == 0 {
		merged.Rules.Disable = base.Rules.Disable
	}
	return &merged
}

// DeduplicatePatterns removes repeated entries, keeping the first.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}

// RuleOptions returns the detector thresholds.
func (c *Config) RuleOptions() rules.Options {
	return rules.Options{
		MaxParameters:     c.Analysis.MaxParameters,
		MaxFunctionLines:  c.Analysis.MaxFunctionLines,
		HeadlineBlockSize: c.Analysis.HeadlineBlockSize,
	}
}

// Registry builds the detector registry with the configured rules
// enabled.
func (c *Config) Registry() (*rules.Registry, error) {
	disabled, err := rules.ParseKinds(c.Rules.Disable)
	if err != nil {
		return nil, err
	}
	only, err := rules.ParseKinds(c.Rules.Only)
	if err != nil {
		return nil, err
	}
	return rules.NewRegistry(c.RuleOptions()).Only(only...).Without(disabled...), nil
}
