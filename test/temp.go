package test

import (
	"os"
	"testing"

	"github.com/BurntSushi/toml"
	cp "github.com/otiai10/copy"
	"github.com/stretchr/testify/require"
)

// WriteConfig encodes the given options into a config file at path.
func WriteConfig(t *testing.T, path string, options map[string]any) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create a new config file: %v", err)
	}

	encoder := toml.NewEncoder(f)
	if err = encoder.Encode(options); err != nil {
		t.Fatalf("failed to write to config file: %v", err)
	}

	require.NoError(t, f.Close(), "failed to close config file")
}

// TempExamples copies the example tree into a fresh temp dir.
func TempExamples(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	require.NoError(t, cp.Copy("../test/examples", tempDir), "failed to copy test data to dir")

	return tempDir
}

// TempFile creates a file under dir with the given contents.
func TempFile(t *testing.T, dir string, pattern string, contents string) string {
	t.Helper()

	file, err := os.CreateTemp(dir, pattern)
	require.NoError(t, err, "failed to create temp file")

	_, err = file.WriteString(contents)
	require.NoError(t, err, "failed to write contents to temp file")
	require.NoError(t, file.Close(), "failed to close temp file")

	return file.Name()
}
