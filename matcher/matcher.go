// Package matcher decides which candidate paths participate in a formatting
// run, based on the include/exclude regular expressions of the resolved
// configuration.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Decision is the outcome of matching one path, along with the name of the
// rule that produced it. The rule name is surfaced in debug logs so that
// precedence stays auditable.
type Decision struct {
	Include bool
	Rule    string
}

// Patterns holds the four regular expressions controlling file selection.
// Empty strings disable the corresponding pattern, except Include where an
// empty pattern admits every path.
type Patterns struct {
	Include       string
	Exclude       string
	ExtendExclude string
	ForceExclude  string
}

type rule struct {
	name  string
	apply func(path string) (Decision, bool)
}

// Matcher evaluates an ordered list of named rules against normalised paths,
// short-circuiting on the first rule that claims the path.
type Matcher struct {
	rules []rule
	log   *log.Logger
}

// New compiles the patterns into a Matcher. A pattern that fails to compile
// is a configuration error and aborts the run before any file is processed.
func New(patterns Patterns) (*Matcher, error) {
	compile := func(name, expr string) (*regexp.Regexp, error) {
		if expr == "" {
			return nil, nil
		}

		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", name, expr, err)
		}

		return re, nil
	}

	include, err := compile("include", patterns.Include)
	if err != nil {
		return nil, err
	}

	exclude, err := compile("exclude", patterns.Exclude)
	if err != nil {
		return nil, err
	}

	extendExclude, err := compile("extend-exclude", patterns.ExtendExclude)
	if err != nil {
		return nil, err
	}

	forceExclude, err := compile("force-exclude", patterns.ForceExclude)
	if err != nil {
		return nil, err
	}

	m := &Matcher{log: log.WithPrefix("matcher")}

	// precedence order matters: force-exclude wins over everything, then a
	// path must match include, then the exclusions are OR-ed together
	m.rules = []rule{
		{
			name: "force-exclude",
			apply: func(path string) (Decision, bool) {
				if forceExclude != nil && forceExclude.MatchString(path) {
					return Decision{Include: false, Rule: "force-exclude"}, true
				}

				return Decision{}, false
			},
		},
		{
			name: "include",
			apply: func(path string) (Decision, bool) {
				if include != nil && !include.MatchString(path) {
					return Decision{Include: false, Rule: "include"}, true
				}

				return Decision{}, false
			},
		},
		{
			name: "exclude",
			apply: func(path string) (Decision, bool) {
				if exclude != nil && exclude.MatchString(path) {
					return Decision{Include: false, Rule: "exclude"}, true
				}

				if extendExclude != nil && extendExclude.MatchString(path) {
					return Decision{Include: false, Rule: "extend-exclude"}, true
				}

				return Decision{}, false
			},
		},
	}

	return m, nil
}

// Match decides whether the given root-relative path participates in the run.
func (m *Matcher) Match(relPath string) Decision {
	path := Normalize(relPath)

	for _, r := range m.rules {
		if decision, ok := r.apply(path); ok {
			m.log.Debugf("%s: %s (rule: %s)", path, verdict(decision), decision.Rule)

			return decision
		}
	}

	return Decision{Include: true, Rule: "default"}
}

// Wants is a convenience wrapper returning only the inclusion verdict.
func (m *Matcher) Wants(relPath string) bool {
	return m.Match(relPath).Include
}

// Normalize converts a root-relative path to the form patterns are matched
// against: forward slashes and a leading slash anchoring it to the root.
// Patterns use search semantics, so a match anywhere in the string suffices.
func Normalize(relPath string) string {
	path := filepath.ToSlash(relPath)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

func verdict(d Decision) string {
	if d.Include {
		return "included"
	}

	return "excluded"
}
