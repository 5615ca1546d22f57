// Build artifact detection from MSBuild project files.
// Reads *.csproj and Directory.Build.props to find custom output directories.
package config

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// BuildArtifactDetector finds MSBuild output directories that should never
// be analyzed.
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// msbuildProject is the subset of an MSBuild file that names output paths.
type msbuildProject struct {
	PropertyGroups []struct {
		OutputPath                 string `xml:"OutputPath"`
		BaseOutputPath             string `xml:"BaseOutputPath"`
		BaseIntermediateOutputPath string `xml:"BaseIntermediateOutputPath"`
		IntermediateOutputPath     string `xml:"IntermediateOutputPath"`
	} `xml:"PropertyGroup"`
}

// DetectOutputDirectories scans the MSBuild files under the root and
// returns exclusion globs such as "**/artifacts/**".
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var files []string
	fsys := os.DirFS(bad.projectRoot)
	for _, pattern := range []string{"**/*.csproj", "**/Directory.Build.props"} {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	var patterns []string
	for _, f := range files {
		if slashed := "/" + f; strings.Contains(slashed, "/bin/") || strings.Contains(slashed, "/obj/") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(bad.projectRoot, filepath.FromSlash(f)))
		if err != nil {
			continue
		}
		patterns = append(patterns, outputPatterns(data)...)
	}
	return DeduplicatePatterns(patterns)
}

func outputPatterns(data []byte) []string {
	var proj msbuildProject
	if xml.Unmarshal(data, &proj) != nil {
		return nil
	}
	var patterns []string
	for _, g := range proj.PropertyGroups {
		for _, p := range []string{g.OutputPath, g.BaseOutputPath, g.BaseIntermediateOutputPath, g.IntermediateOutputPath} {
			if dir := outputDirName(p); dir != "" {
				patterns = append(patterns, "**/"+dir+"/**")
			}
		}
	}
	return patterns
}

// outputDirName returns the first literal segment of an MSBuild path such
// as "artifacts\$(Configuration)\". Paths that start with a property or
// leave the project are ignored.
func outputDirName(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	p = strings.TrimPrefix(p, "./")
	if p == "" || strings.HasPrefix(p, "$(") || strings.HasPrefix(p, "..") || strings.HasPrefix(p, "/") {
		return ""
	}
	first, _, _ := strings.Cut(p, "/")
	if first == "" || strings.Contains(first, "$(") {
		return ""
	}
	return first
}

// EnrichExclusionsWithBuildArtifacts adds the detected MSBuild output
// directories to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}
	detected := NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()
	if len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}
