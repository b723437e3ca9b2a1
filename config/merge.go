package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/WSU-CptS-581-2025/black-code-formatter/matcher"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrBadValue      = errors.New("invalid option value")
)

// Kind is the declared type of a configuration option.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindStringList:
		return "list of strings"
	default:
		return "string"
	}
}

// Source records which precedence layer supplied an option's effective value.
type Source int

const (
	SourceDefault Source = iota
	SourceFile
	SourceOverride
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "config file"
	case SourceOverride:
		return "command line"
	default:
		return "built-in default"
	}
}

// Option describes one recognised configuration option.
type Option struct {
	Name    string
	Kind    Kind
	Default any
}

const (
	// DefaultInclude selects python sources and stubs.
	DefaultInclude = `\.pyi?$`

	// DefaultExclude mirrors the usual vendor, VCS and build directories
	// nobody wants reformatted.
	DefaultExclude = `/(\.direnv|\.eggs|\.git|\.hg|\.ipynb_checkpoints|\.mypy_cache|\.nox|\.pytest_cache` +
		`|\.ruff_cache|\.tox|\.svn|\.venv|\.vscode|__pypackages__|_build|buck-out|build|dist|venv)/`
)

// TargetVersions enumerates the accepted target-version tokens.
var TargetVersions = []string{
	"py33", "py34", "py35", "py36", "py37", "py38", "py39",
	"py310", "py311", "py312", "py313",
}

// Options is the registry of recognised options, each matching a command line
// flag one-to-one. Anything else appearing in a config file is a hard error.
var Options = []Option{
	{Name: "line-length", Kind: KindInt, Default: 88},
	{Name: "target-version", Kind: KindStringList, Default: []string{}},
	{Name: "include", Kind: KindString, Default: DefaultInclude},
	{Name: "exclude", Kind: KindString, Default: DefaultExclude},
	{Name: "extend-exclude", Kind: KindString, Default: ""},
	{Name: "force-exclude", Kind: KindString, Default: ""},
	{Name: "skip-string-normalization", Kind: KindBool, Default: false},
	{Name: "skip-magic-trailing-comma", Kind: KindBool, Default: false},
}

func optionByName(name string) (Option, bool) {
	for _, opt := range Options {
		if opt.Name == name {
			return opt, true
		}
	}

	return Option{}, false
}

type value struct {
	raw    any
	source Source
}

// Resolved is the effective configuration for one project root: exactly one
// value per recognised option, each carrying the precedence layer it came
// from. Created once per root and shared read-only afterwards.
type Resolved struct {
	path    string
	values  map[string]value
	matcher *matcher.Matcher
}

// Path returns the config file the file layer was loaded from, or "" when
// defaults and overrides alone were merged.
func (r *Resolved) Path() string {
	return r.path
}

// Source reports which layer supplied the effective value for name.
func (r *Resolved) Source(name string) (Source, bool) {
	v, ok := r.values[name]

	return v.source, ok
}

// Matcher returns the path matcher compiled from the effective patterns.
func (r *Resolved) Matcher() *matcher.Matcher {
	return r.matcher
}

func (r *Resolved) LineLength() int {
	return r.values["line-length"].raw.(int)
}

func (r *Resolved) TargetVersions() []string {
	return r.values["target-version"].raw.([]string)
}

func (r *Resolved) Include() string {
	return r.values["include"].raw.(string)
}

func (r *Resolved) Exclude() string {
	return r.values["exclude"].raw.(string)
}

func (r *Resolved) ExtendExclude() string {
	return r.values["extend-exclude"].raw.(string)
}

func (r *Resolved) ForceExclude() string {
	return r.values["force-exclude"].raw.(string)
}

func (r *Resolved) SkipStringNormalization() bool {
	return r.values["skip-string-normalization"].raw.(bool)
}

func (r *Resolved) SkipMagicTrailingComma() bool {
	return r.values["skip-magic-trailing-comma"].raw.(bool)
}

// Patterns assembles the matcher inputs from the effective values.
func (r *Resolved) Patterns() matcher.Patterns {
	return matcher.Patterns{
		Include:       r.Include(),
		Exclude:       r.Exclude(),
		ExtendExclude: r.ExtendExclude(),
		ForceExclude:  r.ForceExclude(),
	}
}

// Signature returns a stable hash of the effective option values, used to
// detect configuration changes between runs.
func (r *Resolved) Signature() []byte {
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}

	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s=%v\n", name, r.values[name].raw)
	}

	return h.Sum(nil)
}

// Merge combines the three precedence layers, lowest first: built-in
// defaults, the values parsed from the config file at path (may be nil), and
// the overrides explicitly set by the caller. Higher layers replace lower
// ones wholesale; list values are never concatenated across layers. Every
// incoming value is validated against the option's declared type, and unknown
// names are rejected rather than ignored.
func Merge(path string, fileValues map[string]any, overrides map[string]any) (*Resolved, error) {
	values := make(map[string]value, len(Options))
	for _, opt := range Options {
		values[opt.Name] = value{raw: opt.Default, source: SourceDefault}
	}

	apply := func(layer map[string]any, source Source) error {
		for name, raw := range layer {
			opt, ok := optionByName(name)
			if !ok {
				return fmt.Errorf("%w: %q in %s", ErrUnknownOption, name, source)
			}

			coerced, err := coerce(opt, raw, source)
			if err != nil {
				return err
			}

			values[name] = value{raw: coerced, source: source}
		}

		return nil
	}

	if err := apply(fileValues, SourceFile); err != nil {
		return nil, err
	}

	if err := apply(overrides, SourceOverride); err != nil {
		return nil, err
	}

	r := &Resolved{path: path, values: values}

	for _, version := range r.TargetVersions() {
		if !validTargetVersion(version) {
			v := r.values["target-version"]

			return nil, fmt.Errorf(
				"%w: option %q from %s: unrecognised version %q (expected one of %s)",
				ErrBadValue, "target-version", v.source, version, strings.Join(TargetVersions, ", "),
			)
		}
	}

	// compile the patterns up front so an invalid regular expression aborts
	// the run before any file is touched
	m, err := matcher.New(r.Patterns())
	if err != nil {
		return nil, err
	}

	r.matcher = m

	return r, nil
}

// coerce validates raw against the option's declared type and normalises it
// to the canonical representation. TOML integers arrive as int64 and lists as
// []any, so both are mapped onto the declared Go types.
func coerce(opt Option, raw any, source Source) (any, error) {
	mismatch := func() error {
		return fmt.Errorf(
			"%w: option %q from %s: expected %s, got %T",
			ErrBadValue, opt.Name, source, opt.Kind, raw,
		)
	}

	switch opt.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch()
		}

		return s, nil

	case KindInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		default:
			return nil, mismatch()
		}

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, mismatch()
		}

		return b, nil

	case KindStringList:
		switch v := raw.(type) {
		case []string:
			return v, nil
		case []any:
			out := make([]string, len(v))

			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, mismatch()
				}

				out[i] = s
			}

			return out, nil
		default:
			return nil, mismatch()
		}
	}

	return nil, mismatch()
}

func validTargetVersion(version string) bool {
	for _, v := range TargetVersions {
		if v == version {
			return true
		}
	}

	return false
}
