package walk

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gobwas/glob"
)

// prunePatterns are directory names never worth descending into. The
// exclusion patterns of the resolved config still apply to everything the
// walker emits; pruning just avoids traversing trees nobody formats.
var prunePatterns = []string{
	".git", ".hg", ".svn",
	"__pycache__", ".mypy_cache", ".pytest_cache", ".ruff_cache",
	".venv", "venv", ".tox", ".nox",
	"node_modules",
}

type filesystemWalker struct {
	root   string
	paths  []string
	prunes []glob.Glob
}

func (f *filesystemWalker) Root() string {
	return f.root
}

func (f *filesystemWalker) Walk(ctx context.Context, fn WalkFunc) error {
	walkFn := func(path string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			return fn(&File{Path: path}, err)
		}

		if info.IsDir() {
			if path != f.root && f.pruned(filepath.Base(path)) {
				return filepath.SkipDir
			}

			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(f.root, path)
		if err != nil {
			return fmt.Errorf("failed to determine relative path for %s: %w", path, err)
		}

		file := File{
			Path:    path,
			RelPath: relPath,
			Info:    info,
		}

		return fn(&file, nil)
	}

	for _, path := range f.paths {
		if err := filepath.Walk(path, walkFn); err != nil {
			return err
		}
	}

	return nil
}

func (f *filesystemWalker) pruned(name string) bool {
	for _, g := range f.prunes {
		if g.Match(name) {
			return true
		}
	}

	return false
}

// NewFilesystem creates a walker which traverses the filesystem beneath the
// given paths, skipping well known VCS, cache and vendor directories.
func NewFilesystem(root string, paths []string) (Walker, error) {
	if len(paths) == 0 {
		paths = []string{root}
	}

	prunes := make([]glob.Glob, 0, len(prunePatterns))

	for _, pattern := range prunePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile prune pattern %q: %w", pattern, err)
		}

		prunes = append(prunes, g)
	}

	return &filesystemWalker{root: root, paths: paths, prunes: prunes}, nil
}
