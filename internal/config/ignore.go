package config

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadIgnoreFile reads the blacklist fragments of dir/.smellignore: one
// name fragment per line, '#' starts a comment. A missing file yields no
// entries.
func LoadIgnoreFile(dir string) ([]string, error) {
	file, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return parseIgnore(file)
}

func parseIgnore(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// WithIgnoreFile returns a copy of c whose blacklist also holds the
// entries of the project's .smellignore.
func (c *Config) WithIgnoreFile() (*Config, error) {
	entries, err := LoadIgnoreFile(c.Project.Root)
	if err != nil {
		return nil, err
	}
	out := *c
	out.Blacklist = DeduplicatePatterns(append(append([]string{}, c.Blacklist...), entries...))
	return &out, nil
}
