package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/rules"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return smerrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return smerrors.NewConfigError("analysis", "", err)
	}

	if err := v.validateRulesConfig(&cfg.Rules); err != nil {
		return smerrors.NewConfigError("rules", strings.Join(append(cfg.Rules.Disable, cfg.Rules.Only...), ","), err)
	}

	if err := v.validatePatterns(cfg.Include, cfg.Exclude); err != nil {
		return smerrors.NewConfigError("include/exclude", "", err)
	}

	if err := v.validateOutputConfig(&cfg.Output); err != nil {
		return smerrors.NewConfigError("output", cfg.Output.Format, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		return smerrors.NewConfigError("watch", strconv.Itoa(cfg.Watch.DebounceMs),
			fmt.Errorf("DebounceMs cannot be negative, got %d", cfg.Watch.DebounceMs))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateAnalysisConfig(analysis *Analysis) error {
	if analysis.MaxParameters < 0 {
		return fmt.Errorf("MaxParameters cannot be negative, got %d", analysis.MaxParameters)
	}
	if analysis.MaxFunctionLines < 0 {
		return fmt.Errorf("MaxFunctionLines cannot be negative, got %d", analysis.MaxFunctionLines)
	}
	if analysis.HeadlineBlockSize < 0 {
		return fmt.Errorf("HeadlineBlockSize cannot be negative, got %d", analysis.HeadlineBlockSize)
	}
	// Workers: 0 means auto-detect (will be set by smart defaults)
	if analysis.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", analysis.Workers)
	}
	return nil
}

func (v *Validator) validateRulesConfig(r *Rules) error {
	if _, err := rules.ParseKinds(r.Disable); err != nil {
		return err
	}
	_, err := rules.ParseKinds(r.Only)
	return err
}

func (v *Validator) validatePatterns(groups ...[]string) error {
	for _, patterns := range groups {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
				return fmt.Errorf("invalid glob pattern %q", p)
			}
		}
	}
	return nil
}

func (v *Validator) validateOutputConfig(output *Output) error {
	switch output.Format {
	case "", FormatCSV, FormatJSON, FormatText:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want csv, json or text)", output.Format)
}

// setSmartDefaults fills what the files left unset.
func (v *Validator) setSmartDefaults(cfg *Config) {
	// cores-1 leaves headroom for the system, minimum of 1
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Analysis.MaxParameters == 0 {
		cfg.Analysis.MaxParameters = rules.DefaultMaxParameters
	}
	if cfg.Analysis.MaxFunctionLines == 0 {
		cfg.Analysis.MaxFunctionLines = rules.DefaultMaxFunctionLines
	}
	if cfg.Analysis.HeadlineBlockSize == 0 {
		cfg.Analysis.HeadlineBlockSize = rules.DefaultHeadlineBlockSize
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatCSV
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultWatchDebounceMs
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
