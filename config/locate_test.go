package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestFindProjectRootFindsConfig(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "blackfmt.toml"), "line-length = 100\n")
	writeFile(t, filepath.Join(base, "a.py"), "a = 1\n")
	writeFile(t, filepath.Join(base, "sub", "b.py"), "b = 2\n")

	root, configFile, err := FindProjectRoot([]string{
		filepath.Join(base, "a.py"),
		filepath.Join(base, "sub", "b.py"),
	})
	as.NoError(err)
	as.Equal(base, root)
	as.Equal(filepath.Join(base, "blackfmt.toml"), configFile)
}

func TestFindProjectRootDottedName(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	writeFile(t, filepath.Join(base, ".blackfmt.toml"), "line-length = 100\n")
	writeFile(t, filepath.Join(base, "a.py"), "a = 1\n")

	_, configFile, err := FindProjectRoot([]string{filepath.Join(base, "a.py")})
	as.NoError(err)
	as.Equal(filepath.Join(base, ".blackfmt.toml"), configFile)
}

func TestFindProjectRootStopsAtRepositoryBoundary(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	// a config file above the repository boundary must not be picked up
	writeFile(t, filepath.Join(base, "blackfmt.toml"), "line-length = 100\n")

	repo := filepath.Join(base, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	writeFile(t, filepath.Join(repo, "src", "a.py"), "a = 1\n")

	root, configFile, err := FindProjectRoot([]string{filepath.Join(repo, "src", "a.py")})
	as.NoError(err)
	as.Equal(repo, root)
	as.Empty(configFile)
}

func TestFindProjectRootMercurialMarker(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	repo := filepath.Join(base, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".hg"), 0o755))
	writeFile(t, filepath.Join(repo, "a.py"), "a = 1\n")

	root, configFile, err := FindProjectRoot([]string{filepath.Join(repo, "a.py")})
	as.NoError(err)
	as.Equal(repo, root)
	as.Empty(configFile)
}

func TestFindProjectRootTerminatesAtFilesystemRoot(t *testing.T) {
	as := require.New(t)

	// with no marker and no config anywhere in the chain the search must
	// terminate without error
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.py"), "a = 1\n")

	_, configFile, err := FindProjectRoot([]string{filepath.Join(base, "a.py")})
	as.NoError(err)
	as.Empty(configFile)
}

func TestCommonAncestor(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a", "b", "c.py"), "c = 1\n")
	writeFile(t, filepath.Join(base, "a", "d", "e.py"), "e = 1\n")

	ancestor, err := CommonAncestor([]string{
		filepath.Join(base, "a", "b", "c.py"),
		filepath.Join(base, "a", "d", "e.py"),
	})
	as.NoError(err)
	as.Equal(filepath.Join(base, "a"), ancestor)

	// a directory path contributes itself, not its parent
	ancestor, err = CommonAncestor([]string{filepath.Join(base, "a", "b")})
	as.NoError(err)
	as.Equal(filepath.Join(base, "a", "b"), ancestor)

	// a file path contributes its parent
	ancestor, err = CommonAncestor([]string{filepath.Join(base, "a", "b", "c.py")})
	as.NoError(err)
	as.Equal(filepath.Join(base, "a", "b"), ancestor)
}

func TestFindUp(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "blackfmt.toml"), "line-length = 100\n")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "x", "y"), 0o755))

	path, dir, err := FindUp(filepath.Join(base, "x", "y"), "blackfmt.toml")
	as.NoError(err)
	as.Equal(filepath.Join(base, "blackfmt.toml"), path)
	as.Equal(base, dir)

	_, _, err = FindUp(base, "does-not-exist.toml")
	as.Error(err)
}

func TestParseFile(t *testing.T) {
	as := require.New(t)

	base := t.TempDir()
	path := filepath.Join(base, "blackfmt.toml")
	writeFile(t, path, "line-length = 100\ntarget-version = [\"py311\"]\n")

	values, err := ParseFile(path)
	as.NoError(err)
	as.Equal(int64(100), values["line-length"])
	as.Equal([]any{"py311"}, values["target-version"])

	writeFile(t, path, "line-length = = 100\n")
	_, err = ParseFile(path)
	as.Error(err)

	_, err = ParseFile(filepath.Join(base, "missing.toml"))
	as.Error(err)
}

func TestLoadUnreadableExplicitFile(t *testing.T) {
	as := require.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
	as.Error(err)
}
