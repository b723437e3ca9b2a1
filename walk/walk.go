// Package walk discovers the candidate files for a run, either by traversing
// the filesystem or by reading the git index when the project root is a
// repository.
package walk

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/go-git/go-git/v5"
)

const (
	Auto       = "auto"
	Git        = "git"
	Filesystem = "filesystem"
)

// File represents a candidate file with its absolute path, its path relative
// to the project root, and file info captured at traversal time.
type File struct {
	Path    string
	RelPath string
	Info    fs.FileInfo
}

func (f *File) String() string {
	return f.Path
}

// WalkFunc is invoked once per candidate. A non-nil err describes a problem
// reading that candidate; the callback decides whether it is fatal.
type WalkFunc func(file *File, err error) error

type Walker interface {
	Root() string
	Walk(ctx context.Context, fn WalkFunc) error
}

// New creates a Walker rooted at root, emitting files beneath the given
// paths (all of root when paths is empty). With Auto, the git walker is
// selected when root is a repository.
func New(walkType string, root string, paths []string) (Walker, error) {
	switch walkType {
	case Filesystem:
		return NewFilesystem(root, paths)

	case Git:
		repo, err := git.PlainOpen(root)
		if err != nil {
			return nil, fmt.Errorf("failed to open git repository at %s: %w", root, err)
		}

		return NewGit(root, paths, repo)

	case Auto:
		repo, err := git.PlainOpen(root)
		if err != nil {
			return NewFilesystem(root, paths)
		}

		return NewGit(root, paths, repo)

	default:
		return nil, fmt.Errorf("unknown walk type: %q", walkType)
	}
}
