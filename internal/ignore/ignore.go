// Package ignore decides which filesystem paths are excluded from listings,
// searches and completions.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// DefaultPatterns contains directories and files that are commonly ignored
// across language ecosystems.
var DefaultPatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Node.js / JavaScript / TypeScript
	"node_modules",
	".npm",
	".yarn",
	".pnpm-store",
	"bower_components",

	// Python
	".venv",
	"venv",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".ruff_cache",
	"*.egg-info",
	"*.pyc",
	".tox",
	".nox",

	// Go
	"vendor",

	// Rust
	"target",

	// Java / Kotlin / Scala
	".gradle",
	".mvn",

	// .NET / C#
	"obj",

	// Elixir
	"_build",

	// Build outputs and caches
	"dist",
	".cache",
	".parcel-cache",
	".next",
	".nuxt",
	".turbo",

	// Coverage and test artifacts
	"coverage",
	".nyc_output",
	"htmlcov",

	// Misc
	".terraform",
	".serverless",
	".DS_Store",
}

// Matcher matches paths against a list of glob patterns. Only the base name
// of a path is matched; directory walks prune ignored directories so their
// contents are never reached.
type Matcher struct {
	patterns    []string
	allowHidden []string
}

// Options configures a Matcher.
type Options struct {
	// ExtraPatterns are appended to DefaultPatterns.
	ExtraPatterns []string
	// AllowHidden lists hidden base names that stay visible even when the
	// user did not type a leading dot.
	AllowHidden []string
	// NoDefaults drops DefaultPatterns.
	NoDefaults bool
}

// New creates a Matcher. Invalid glob patterns never match.
func New(opts Options) *Matcher {
	patterns := make([]string, 0, len(DefaultPatterns)+len(opts.ExtraPatterns))
	if !opts.NoDefaults {
		patterns = append(patterns, DefaultPatterns...)
	}
	for _, p := range opts.ExtraPatterns {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	return &Matcher{
		patterns:    lo.Uniq(patterns),
		allowHidden: opts.AllowHidden,
	}
}

// Patterns returns the active patterns.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// ShouldIgnore reports whether the base name of path matches a pattern.
func (m *Matcher) ShouldIgnore(path string) bool {
	name := filepath.Base(filepath.Clean(path))
	if path == "" || name == "." || name == string(filepath.Separator) {
		return false
	}
	return m.matchName(name)
}

// AllowHidden reports whether a hidden entry should be shown even though the
// typed prefix does not start with a dot.
func (m *Matcher) AllowHidden(path string) bool {
	return lo.Contains(m.allowHidden, filepath.Base(path))
}

func (m *Matcher) matchName(name string) bool {
	return lo.SomeBy(m.patterns, func(pattern string) bool {
		if pattern == name {
			return true
		}
		ok, err := filepath.Match(pattern, name)
		return err == nil && ok
	})
}
