package walk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/WSU-CptS-581-2025/black-code-formatter/test"
	"github.com/WSU-CptS-581-2025/black-code-formatter/walk"
	"github.com/stretchr/testify/require"
)

func TestFilesystemWalk(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	// directories like .git are pruned, everything else is emitted
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, ".git", "objects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0o644))

	walker, err := walk.NewFilesystem(tempDir, nil)
	as.NoError(err)
	as.Equal(tempDir, walker.Root())

	var relPaths []string

	err = walker.Walk(context.Background(), func(file *walk.File, err error) error {
		as.NoError(err)
		as.NotNil(file.Info)
		relPaths = append(relPaths, file.RelPath)

		return nil
	})
	as.NoError(err)

	as.ElementsMatch([]string{
		"README.md",
		"blackfmt.toml",
		filepath.Join("generated", "gen.py"),
		filepath.Join("python", "main.py"),
		filepath.Join("python", "skip.py"),
		filepath.Join("tests", "test_main.py"),
	}, relPaths)
}

func TestFilesystemWalkSubPaths(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	walker, err := walk.NewFilesystem(tempDir, []string{filepath.Join(tempDir, "python")})
	as.NoError(err)

	var relPaths []string

	err = walker.Walk(context.Background(), func(file *walk.File, err error) error {
		as.NoError(err)
		relPaths = append(relPaths, file.RelPath)

		return nil
	})
	as.NoError(err)

	as.ElementsMatch([]string{
		filepath.Join("python", "main.py"),
		filepath.Join("python", "skip.py"),
	}, relPaths)
}

func TestNewAutoFallsBackToFilesystem(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	walker, err := walk.New(walk.Auto, tempDir, nil)
	as.NoError(err)
	as.Equal(tempDir, walker.Root())
}

func TestNewUnknownType(t *testing.T) {
	_, err := walk.New("teleport", t.TempDir(), nil)
	require.Error(t, err)
}
