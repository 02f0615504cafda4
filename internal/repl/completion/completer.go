package completion

import (
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Style tags attached to candidates so renderers can color them.
const (
	StyleFile      = "file"
	StyleDirectory = "directory"
)

// Candidate is a single completion suggestion.
type Candidate struct {
	// Text replaces the input between Start and End. It always carries the
	// trigger symbol and the typed directory part.
	Text string
	// Display is the entry name, with a trailing separator for directories.
	Display string
	// Style is StyleFile or StyleDirectory.
	Style string
	// Start and End are rune offsets into the input line.
	Start int
	End   int
}

// Ignorer decides whether a filesystem path is excluded from completion.
type Ignorer interface {
	ShouldIgnore(path string) bool
}

// HiddenAllower is implemented by ignorers that can re-admit hidden entries
// the user did not explicitly ask for with a leading dot.
type HiddenAllower interface {
	AllowHidden(path string) bool
}

// IgnoreFunc adapts a plain predicate to the Ignorer interface.
type IgnoreFunc func(path string) bool

// ShouldIgnore implements Ignorer.
func (f IgnoreFunc) ShouldIgnore(path string) bool {
	return f(path)
}

// Options configures a Completer.
type Options struct {
	// Trigger starts a completion token, e.g. '@'. The zero rune disables the
	// trigger and the word under the cursor is completed instead.
	Trigger rune

	// Lister enumerates directories. Defaults to OSLister.
	Lister DirLister

	// Ignorer filters entries. Nil keeps every entry.
	Ignorer Ignorer

	// WorkDir returns the directory relative paths resolve against.
	// Defaults to os.Getwd.
	WorkDir func() (string, error)

	// HomeDir is used to expand a leading "~/". Defaults to os.UserHomeDir.
	HomeDir func() (string, error)

	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// Completer produces path completions for a trigger token under the cursor.
// It keeps no state between calls.
type Completer struct {
	trigger rune
	lister  DirLister
	ignorer Ignorer
	workDir func() (string, error)
	homeDir func() (string, error)
	logger  *zap.Logger
}

// NewCompleter creates a Completer from the given options.
func NewCompleter(opts Options) *Completer {
	c := &Completer{
		trigger: opts.Trigger,
		lister:  opts.Lister,
		ignorer: opts.Ignorer,
		workDir: opts.WorkDir,
		homeDir: opts.HomeDir,
		logger:  opts.Logger,
	}
	if c.lister == nil {
		c.lister = OSLister{}
	}
	if c.workDir == nil {
		c.workDir = os.Getwd
	}
	if c.homeDir == nil {
		c.homeDir = os.UserHomeDir
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Trigger returns the configured trigger symbol (zero when disabled).
func (c *Completer) Trigger() rune {
	return c.trigger
}

// GetCompletions returns the candidates for the token ending at cursor, a
// rune offset into text. The sequence is recomputed on every range and is
// empty when the cursor is not inside a trigger token or the directory cannot
// be listed.
func (c *Completer) GetCompletions(text string, cursor int) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		runes := []rune(text)
		if cursor < 0 || cursor > len(runes) {
			return
		}

		start, ok := c.tokenStart(runes, cursor)
		if !ok {
			return
		}

		pathStart := start
		prefix := ""
		if c.trigger != 0 {
			pathStart++
			prefix = string(c.trigger)
		}

		dirPart, namePrefix := splitPartialPath(string(runes[pathStart:cursor]))

		dir, err := c.resolveDir(dirPart)
		if err != nil {
			c.logger.Debug("completion: failed to resolve directory", zap.String("dir", dirPart), zap.Error(err))
			return
		}

		entries, err := c.lister.ListDir(dir)
		if err != nil {
			c.logger.Debug("completion: failed to list directory", zap.String("dir", dir), zap.Error(err))
			return
		}
		// Sort a copy; the lister may hand out a slice it keeps.
		entries = slices.Clone(entries)
		slices.SortFunc(entries, func(a, b DirEntry) int {
			return strings.Compare(a.Name, b.Name)
		})

		wantHidden := strings.HasPrefix(namePrefix, ".")
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name, namePrefix) {
				continue
			}

			fullPath := filepath.Join(dir, entry.Name)
			if strings.HasPrefix(entry.Name, ".") && !wantHidden && !c.allowHidden(fullPath) {
				continue
			}
			if c.ignorer != nil && c.ignorer.ShouldIgnore(fullPath) {
				continue
			}

			display := entry.Name
			style := StyleFile
			if entry.IsDir {
				display += string(filepath.Separator)
				style = StyleDirectory
			}

			candidate := Candidate{
				Text:    prefix + dirPart + display,
				Display: display,
				Style:   style,
				Start:   start,
				End:     cursor,
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// Complete collects GetCompletions into a slice.
func (c *Completer) Complete(text string, cursor int) []Candidate {
	return slices.Collect(c.GetCompletions(text, cursor))
}

// tokenStart scans backward from cursor for the start of the completion
// token. With a trigger, the token must begin with the trigger at offset 0 or
// right after whitespace, and no whitespace may sit between it and the cursor.
func (c *Completer) tokenStart(runes []rune, cursor int) (int, bool) {
	if c.trigger == 0 {
		start := cursor
		for start > 0 && !unicode.IsSpace(runes[start-1]) {
			start--
		}
		return start, true
	}

	for i := cursor - 1; i >= 0; i-- {
		r := runes[i]
		if unicode.IsSpace(r) {
			return 0, false
		}
		if r == c.trigger && (i == 0 || unicode.IsSpace(runes[i-1])) {
			return i, true
		}
	}
	return 0, false
}

// resolveDir turns the typed directory part into a directory to list.
func (c *Completer) resolveDir(dirPart string) (string, error) {
	wd, err := c.workDir()
	if err != nil {
		return "", err
	}
	if dirPart == "" {
		return wd, nil
	}

	if strings.HasPrefix(dirPart, "~/") || strings.HasPrefix(dirPart, "~"+string(filepath.Separator)) {
		home, err := c.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, dirPart[1:]), nil
	}

	if filepath.IsAbs(dirPart) {
		return filepath.Clean(dirPart), nil
	}
	return filepath.Join(wd, dirPart), nil
}

func (c *Completer) allowHidden(path string) bool {
	allower, ok := c.ignorer.(HiddenAllower)
	return ok && allower.AllowHidden(path)
}

// splitPartialPath splits raw at its last separator into the directory part
// (separator included) and the partial entry name.
func splitPartialPath(raw string) (dirPart, namePrefix string) {
	idx := strings.LastIndexAny(raw, "/"+string(filepath.Separator))
	if idx < 0 {
		return "", raw
	}
	return raw[:idx+1], raw[idx+1:]
}
