package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	smerrors "github.com/standardbeagle/smellscan/internal/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := &Config{
		Project: Project{Root: "/test/shop"},
	}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Positive(t, cfg.Analysis.Workers)
	assert.Equal(t, 3, cfg.Analysis.MaxParameters)
	assert.Equal(t, 20, cfg.Analysis.MaxFunctionLines)
	assert.Equal(t, 10, cfg.Analysis.HeadlineBlockSize)
	assert.Equal(t, "shop", cfg.Project.Name)
	assert.Equal(t, FormatCSV, cfg.Output.Format)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, DefaultWatchDebounceMs, cfg.Watch.DebounceMs)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project"},
		{"negative parameters", func(c *Config) { c.Analysis.MaxParameters = -1 }, "analysis"},
		{"negative function lines", func(c *Config) { c.Analysis.MaxFunctionLines = -2 }, "analysis"},
		{"negative headline block", func(c *Config) { c.Analysis.HeadlineBlockSize = -3 }, "analysis"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -1 }, "analysis"},
		{"unknown rule", func(c *Config) { c.Rules.Disable = []string{"FlagArgumnt"} }, "rules"},
		{"unknown only rule", func(c *Config) { c.Rules.Only = []string{"Nope"} }, "rules"},
		{"bad glob", func(c *Config) { c.Exclude = append(c.Exclude, "src/[") }, "include/exclude"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/work")
			tt.edit(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			var cfgErr *smerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	assert.NoError(t, ValidateConfig(Default("/work")))
}

func TestValidateUnknownRuleSuggests(t *testing.T) {
	cfg := Default("/work")
	cfg.Rules.Disable = []string{"FlagArgumnt"}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "did you mean 'FlagArgument'"), err.Error())
}

func TestIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	content := `# generated code
Designer
  Migrations   # EF migrations

AssemblyInfo
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte(content), 0644))

	entries, err := LoadIgnoreFile(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Designer", "Migrations", "AssemblyInfo"}, entries)

	cfg := Default(dir)
	cfg.Blacklist = []string{"Designer", "Legacy"}
	merged, err := cfg.WithIgnoreFile()
	require.NoError(t, err)
	assert.Equal(t, []string{"Designer", "Legacy", "Migrations", "AssemblyInfo"}, merged.Blacklist)
	assert.Equal(t, []string{"Designer", "Legacy"}, cfg.Blacklist, "the receiver is not modified")

	none, err := LoadIgnoreFile(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuildArtifactDetector(t *testing.T) {
	dir := t.TempDir()
	csproj := `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <TargetFramework>net8.0</TargetFramework>
    <OutputPath>artifacts\$(Configuration)\</OutputPath>
    <BaseIntermediateOutputPath>$(SolutionDir)tmp\</BaseIntermediateOutputPath>
  </PropertyGroup>
  <PropertyGroup>
    <BaseOutputPath>../shared</BaseOutputPath>
  </PropertyGroup>
</Project>`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "Shop"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Shop", "Shop.csproj"), []byte(csproj), 0644))
	props := `<Project><PropertyGroup><IntermediateOutputPath>build/obj</IntermediateOutputPath></PropertyGroup></Project>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Directory.Build.props"), []byte(props), 0644))

	patterns := NewBuildArtifactDetector(dir).DetectOutputDirectories()
	assert.ElementsMatch(t, []string{"**/artifacts/**", "**/build/**"}, patterns)

	cfg := Default(dir)
	cfg.EnrichExclusionsWithBuildArtifacts()
	assert.Contains(t, cfg.Exclude, "**/artifacts/**")
	assert.Contains(t, cfg.Exclude, "**/bin/**")
}

func TestOutputDirName(t *testing.T) {
	tests := map[string]string{
		`bin\Release\`:         "bin",
		"./out/x":              "out",
		"$(SolutionDir)build":  "",
		"../elsewhere":         "",
		"/abs/path":            "",
		"":                     "",
		"art$(Configuration)/": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, outputDirName(in), in)
	}
}
