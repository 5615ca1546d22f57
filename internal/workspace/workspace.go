// Package workspace discovers the codebases under a root directory and
// loads them into program models. Every solution file is one codebase made
// of the C# documents below its directory; without any solution the root
// itself is the codebase.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/smellscan/internal/config"
	"github.com/standardbeagle/smellscan/internal/debug"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/parser"
)

const (
	solutionPattern = "**/*.sln"
	projectPattern  = "**/*.csproj"
	sourcePattern   = "**/*.cs"
)

// Codebase is a discovered, not yet loaded codebase.
type Codebase struct {
	Name string
	// Dir is the codebase directory, relative to the workspace root.
	Dir string
	// Solution is the solution file, relative to the workspace root. It is
	// empty when the root itself is the codebase.
	Solution string
	// Files are the documents to analyze, relative to the workspace root
	// and sorted.
	Files []string
}

// Options configures a Workspace.
type Options struct {
	Root    string
	Filter  Filter
	Workers int
	// Parser defaults to the tree-sitter C# parser.
	Parser Parser
}

// OptionsFromConfig maps the loaded configuration onto workspace options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root: cfg.Project.Root,
		Filter: Filter{
			Include:   cfg.Include,
			Exclude:   cfg.Exclude,
			Blacklist: cfg.Blacklist,
			SkipTests: cfg.Analysis.SkipTests,
		},
		Workers: cfg.Analysis.Workers,
	}
}

// Workspace discovers and loads codebases below one root.
type Workspace struct {
	root    string
	fsys    fs.FS
	filter  Filter
	workers int
	parser  Parser
}

// New creates a workspace over opts.Root.
func New(opts Options) (*Workspace, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, smerrors.NewFileError("resolve", opts.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, smerrors.NewFileError("stat", root, err)
	}
	if !info.IsDir() {
		return nil, smerrors.NewFileError("stat", root, fmt.Errorf("not a directory"))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := opts.Parser
	if p == nil {
		p = parser.NewCSharpParser()
	}
	return &Workspace{
		root:    root,
		fsys:    os.DirFS(root),
		filter:  opts.Filter,
		workers: workers,
		parser:  p,
	}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// Discover lists the codebases of the workspace in path order.
func (w *Workspace) Discover(ctx context.Context) ([]Codebase, error) {
	sources, err := w.glob(sourcePattern)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	testProjects, err := w.testProjectDirs()
	if err != nil {
		return nil, err
	}

	documents := make([]string, 0, len(sources))
	for _, rel := range sources {
		if !w.filter.KeepDocument(rel) || underAny(rel, testProjects) {
			continue
		}
		documents = append(documents, rel)
	}

	solutions, err := w.glob(solutionPattern)
	if err != nil {
		return nil, err
	}
	if len(solutions) == 0 {
		name := filepath.Base(w.root)
		debug.LogWorkspace("no solution below %s, analyzing the root as %s\n", w.root, name)
		return []Codebase{{Name: name, Dir: ".", Files: documents}}, nil
	}

	var out []Codebase
	seenDirs := make(map[string]string)
	for _, sln := range solutions {
		if !w.filter.KeepSolution(sln) {
			debug.LogWorkspace("skipping solution %s\n", sln)
			continue
		}
		dir := path.Dir(sln)
		if first, dup := seenDirs[dir]; dup {
			debug.LogWorkspace("solution %s shares its directory with %s, skipping\n", sln, first)
			continue
		}
		seenDirs[dir] = sln

		cb := Codebase{
			Name:     strings.TrimSuffix(path.Base(sln), path.Ext(sln)),
			Dir:      dir,
			Solution: sln,
		}
		for _, doc := range documents {
			if under(doc, dir) {
				cb.Files = append(cb.Files, doc)
			}
		}
		out = append(out, cb)
	}
	debug.LogWorkspace("discovered %d codebases below %s\n", len(out), w.root)
	return out, nil
}

// testProjectDirs returns the directories of projects whose name marks
// them as tests. It is empty unless tests are skipped.
func (w *Workspace) testProjectDirs() ([]string, error) {
	if !w.filter.SkipTests {
		return nil, nil
	}
	projects, err := w.glob(projectPattern)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, p := range projects {
		if IsTestName(strings.TrimSuffix(path.Base(p), path.Ext(p))) {
			dirs = append(dirs, path.Dir(p))
		}
	}
	return dirs, nil
}

func (w *Workspace) glob(pattern string) ([]string, error) {
	var matches []string
	err := doublestar.GlobWalk(w.fsys, pattern, func(p string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if w.filter.Excluded(p) {
			return nil
		}
		matches = append(matches, p)
		return nil
	})
	if err != nil {
		return nil, smerrors.NewFileError("glob "+pattern, w.root, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// under reports whether rel lies inside dir; "." contains everything.
func under(rel, dir string) bool {
	return dir == "." || strings.HasPrefix(rel, dir+"/")
}

func underAny(rel string, dirs []string) bool {
	for _, d := range dirs {
		if under(rel, d) {
			return true
		}
	}
	return false
}

// Abs returns the absolute path of a workspace-relative path.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// Rel returns the workspace-relative, slash-separated form of p, and
// false when p lies outside the workspace.
func (w *Workspace) Rel(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// LoadAll discovers and loads every codebase. A codebase that fails as a
// whole is reported in the returned error and the others are still
// returned.
func (w *Workspace) LoadAll(ctx context.Context) ([]*model.Codebase, error) {
	codebases, err := w.Discover(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Codebase, 0, len(codebases))
	failures := &smerrors.MultiError{}
	for _, cb := range codebases {
		loaded, err := w.Load(ctx, cb)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			failures.Append(smerrors.NewCodebaseError("load", cb.Name, cb.Dir, err))
			continue
		}
		out = append(out, loaded)
	}
	return out, failures.ErrorOrNil()
}
