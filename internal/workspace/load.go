package workspace

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/smellscan/internal/debug"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/model"
	"github.com/standardbeagle/smellscan/internal/symbollinker"
	"github.com/standardbeagle/smellscan/internal/syntax"
	"github.com/standardbeagle/smellscan/internal/types"
)

// Parser turns one source file into a syntax tree.
type Parser interface {
	Parse(fileID types.FileID, path string, content []byte) (*syntax.Tree, error)
}

// Load reads and parses the documents of cb concurrently and links them
// into a program model. Unreadable or unparseable documents become failed
// units; only a cancelled context fails the load.
func (w *Workspace) Load(ctx context.Context, cb Codebase) (*model.Codebase, error) {
	files := make([]symbollinker.File, len(cb.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)
	for i, rel := range cb.Files {
		id := types.FileID(i + 1)
		files[i] = symbollinker.File{ID: id, Path: rel}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i].Tree, files[i].Err = w.parseFile(id, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loaded := symbollinker.Link(cb.Name, w.Abs(cb.Dir), files)
	if failed := len(loaded.Failures()); failed > 0 {
		debug.LogWorkspace("%s: %d of %d documents failed to load\n", cb.Name, failed, len(files))
	}
	return loaded, nil
}

func (w *Workspace) parseFile(id types.FileID, rel string) (tree *syntax.Tree, err error) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("parser panic for %s: %v\n", rel, r)
			tree, err = nil, smerrors.NewPanicError("parse", r).WithFile(id, rel)
		}
	}()
	content, err := os.ReadFile(w.Abs(rel))
	if err != nil {
		return nil, smerrors.NewFileError("read", rel, err)
	}
	return w.parser.Parse(id, rel, content)
}
