package walk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

type gitWalker struct {
	root  string
	paths []string

	log  *log.Logger
	repo *git.Repository
}

func (g *gitWalker) Root() string {
	return g.root
}

func (g *gitWalker) Walk(ctx context.Context, fn WalkFunc) error {
	index, err := g.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("failed to open git index: %w", err)
	}

	for _, entry := range index.Entries {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		// only regular files, not symlinks or submodules
		if !(entry.Mode == filemode.Regular || entry.Mode == filemode.Executable) {
			continue
		}

		relPath := filepath.FromSlash(entry.Name)
		if !g.wanted(relPath) {
			continue
		}

		path := filepath.Join(g.root, relPath)

		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			// indexed but deleted from the working tree
			g.log.Debugf("skipping deleted entry %s", relPath)

			continue
		}

		file := File{
			Path:    path,
			RelPath: relPath,
			Info:    info,
		}

		if err := fn(&file, err); err != nil {
			return err
		}
	}

	return nil
}

// wanted reports whether relPath sits beneath one of the requested paths.
func (g *gitWalker) wanted(relPath string) bool {
	if len(g.paths) == 0 {
		return true
	}

	path := filepath.Join(g.root, relPath)

	for _, requested := range g.paths {
		if path == requested || strings.HasPrefix(path, requested+string(os.PathSeparator)) {
			return true
		}
	}

	return false
}

// NewGit creates a walker which enumerates the files tracked in the git
// index of the repository at root.
func NewGit(root string, paths []string, repo *git.Repository) (Walker, error) {
	// requesting the root itself means walking everything
	cleaned := make([]string, 0, len(paths))

	for _, path := range paths {
		if filepath.Clean(path) == filepath.Clean(root) {
			continue
		}

		cleaned = append(cleaned, filepath.Clean(path))
	}

	return &gitWalker{
		root:  root,
		paths: cleaned,
		log:   log.WithPrefix("walk | git"),
		repo:  repo,
	}, nil
}
