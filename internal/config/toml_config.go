package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// parseTOML reads a .smellscan.toml document over the defaults. Keys
// mirror the KDL file:
//
//	include = ["src/**"]
//	[analysis]
//	max_parameters = 4
//	[rules]
//	disable = ["CommentHeadline"]
func parseTOML(content []byte, defaultRoot string) (*Config, error) {
	cfg := Default("")
	cfg.Project.Root = ""
	defaults := cfg.Exclude
	cfg.Exclude = nil

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg.Exclude = DeduplicatePatterns(append(defaults, cfg.Exclude...))
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if cfg.Project.Root == "" {
		cfg.Project.Root = defaultRoot
	}
	return cfg, nil
}
