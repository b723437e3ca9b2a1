package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeDefaults(t *testing.T) {
	as := require.New(t)

	resolved, err := Merge("", nil, nil)
	as.NoError(err)

	as.Equal(88, resolved.LineLength())
	as.Empty(resolved.TargetVersions())
	as.Equal(DefaultInclude, resolved.Include())
	as.Equal(DefaultExclude, resolved.Exclude())
	as.Equal("", resolved.ExtendExclude())
	as.Equal("", resolved.ForceExclude())
	as.False(resolved.SkipStringNormalization())
	as.False(resolved.SkipMagicTrailingComma())
	as.Equal("", resolved.Path())

	source, ok := resolved.Source("line-length")
	as.True(ok)
	as.Equal(SourceDefault, source)
}

func TestMergeFileLayer(t *testing.T) {
	as := require.New(t)

	// TOML integers arrive as int64 and lists as []any
	resolved, err := Merge("/repo/blackfmt.toml", map[string]any{
		"line-length":    int64(100),
		"target-version": []any{"py311"},
	}, nil)
	as.NoError(err)

	as.Equal(100, resolved.LineLength())
	as.Equal([]string{"py311"}, resolved.TargetVersions())
	as.Equal("/repo/blackfmt.toml", resolved.Path())

	source, _ := resolved.Source("line-length")
	as.Equal(SourceFile, source)

	// options the file did not set stay at their defaults
	source, _ = resolved.Source("include")
	as.Equal(SourceDefault, source)
}

func TestMergeOverridesBeatFile(t *testing.T) {
	as := require.New(t)

	resolved, err := Merge("", map[string]any{
		"line-length":               int64(100),
		"skip-string-normalization": true,
	}, map[string]any{
		"line-length": 120,
	})
	as.NoError(err)

	as.Equal(120, resolved.LineLength())
	as.True(resolved.SkipStringNormalization())

	source, _ := resolved.Source("line-length")
	as.Equal(SourceOverride, source)

	source, _ = resolved.Source("skip-string-normalization")
	as.Equal(SourceFile, source)
}

func TestMergeListsAreReplacedNotMerged(t *testing.T) {
	as := require.New(t)

	// a higher precedence source replaces a list wholesale, never unions it
	resolved, err := Merge("", map[string]any{
		"target-version": []any{"py38", "py39"},
	}, map[string]any{
		"target-version": []string{"py312"},
	})
	as.NoError(err)

	as.Equal([]string{"py312"}, resolved.TargetVersions())
}

func TestMergeAssociativity(t *testing.T) {
	as := require.New(t)

	file := map[string]any{"line-length": int64(100), "extend-exclude": "generated/"}
	overrides := map[string]any{"line-length": 79}

	separate, err := Merge("", file, overrides)
	as.NoError(err)

	// pre-merging defaults and file before applying overrides must not change
	// the outcome, as long as precedence order is respected
	premerged, err := Merge("", file, nil)
	as.NoError(err)

	combined, err := Merge("", map[string]any{
		"line-length":    premerged.LineLength(),
		"extend-exclude": premerged.ExtendExclude(),
	}, overrides)
	as.NoError(err)

	as.Equal(separate.LineLength(), combined.LineLength())
	as.Equal(separate.ExtendExclude(), combined.ExtendExclude())
}

func TestMergeUnknownOption(t *testing.T) {
	as := require.New(t)

	_, err := Merge("", map[string]any{"line-width": int64(100)}, nil)
	as.ErrorIs(err, ErrUnknownOption)
	as.Contains(err.Error(), "line-width")
	as.Contains(err.Error(), "config file")
}

func TestMergeTypeMismatch(t *testing.T) {
	as := require.New(t)

	_, err := Merge("", map[string]any{"line-length": "wide"}, nil)
	as.ErrorIs(err, ErrBadValue)
	as.Contains(err.Error(), "line-length")
	as.Contains(err.Error(), "config file")
	as.Contains(err.Error(), "integer")

	_, err = Merge("", nil, map[string]any{"skip-string-normalization": "yes"})
	as.ErrorIs(err, ErrBadValue)
	as.Contains(err.Error(), "command line")
}

func TestMergeInvalidTargetVersion(t *testing.T) {
	as := require.New(t)

	_, err := Merge("", map[string]any{"target-version": []any{"py99"}}, nil)
	as.ErrorIs(err, ErrBadValue)
	as.Contains(err.Error(), "py99")
}

func TestMergeInvalidPattern(t *testing.T) {
	as := require.New(t)

	_, err := Merge("", map[string]any{"include": "("}, nil)
	as.Error(err)
	as.Contains(err.Error(), "include")
}

func TestSignature(t *testing.T) {
	as := require.New(t)

	a, err := Merge("", nil, nil)
	as.NoError(err)

	b, err := Merge("", nil, nil)
	as.NoError(err)

	as.Equal(a.Signature(), b.Signature())

	c, err := Merge("", map[string]any{"line-length": int64(100)}, nil)
	as.NoError(err)

	as.NotEqual(a.Signature(), c.Signature())
}
