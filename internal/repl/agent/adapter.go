// Package agent provides the filesystem inspection tools (list_files,
// read_file, grep) that fsagent exposes to an AI coding agent, together with
// their OpenAI-compatible tool definitions.
package agent

import (
	"go.uber.org/zap"
)

// Ignorer decides whether a path is skipped by listings and searches.
type Ignorer interface {
	ShouldIgnore(path string) bool
}

// Options configures FileTools.
type Options struct {
	// Ignorer filters walked paths. Nil keeps everything.
	Ignorer Ignorer

	// MaxGrepMatches stops a search after this many matches. Defaults to 200.
	MaxGrepMatches int

	// MaxReadBytes is the output size above which read_file truncates lines
	// from the middle. Defaults to 100000.
	MaxReadBytes int

	// DefaultRecursive is used when a list request leaves Recursive unset.
	DefaultRecursive bool

	// Logger receives tool activity. Nil disables logging.
	Logger *zap.Logger
}

// FileTools implements the filesystem tools. It is safe for concurrent use.
type FileTools struct {
	ignorer          Ignorer
	maxGrepMatches   int
	maxReadBytes     int
	defaultRecursive bool
	logger           *zap.Logger
}

// NewFileTools creates FileTools from the given options.
func NewFileTools(opts Options) *FileTools {
	t := &FileTools{
		ignorer:          opts.Ignorer,
		maxGrepMatches:   opts.MaxGrepMatches,
		maxReadBytes:     opts.MaxReadBytes,
		defaultRecursive: opts.DefaultRecursive,
		logger:           opts.Logger,
	}
	if t.maxGrepMatches <= 0 {
		t.maxGrepMatches = 200
	}
	if t.maxReadBytes <= 0 {
		t.maxReadBytes = 100000
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

func (t *FileTools) shouldIgnore(path string) bool {
	return t.ignorer != nil && t.ignorer.ShouldIgnore(path)
}
