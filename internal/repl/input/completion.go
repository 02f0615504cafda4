package input

import (
	"github.com/atinylittleshell/fsagent/internal/repl/completion"
)

// CompletionProvider produces path completion candidates for a line and a
// rune cursor offset.
type CompletionProvider interface {
	Complete(text string, cursor int) []completion.Candidate
}

// CompletionState tracks an in-progress completion session: the candidate
// list, the selected candidate and the span of the buffer it occupies.
type CompletionState struct {
	active     bool
	candidates []completion.Candidate
	selected   int

	// start is where every candidate of the session is inserted; end is the
	// end of the text currently occupying the span.
	start int
	end   int

	originalText   string
	originalCursor int
}

// NewCompletionState creates a new CompletionState in its initial (inactive) state.
func NewCompletionState() *CompletionState {
	return &CompletionState{selected: -1}
}

// Reset clears all completion state and returns to inactive mode.
func (cs *CompletionState) Reset() {
	*cs = CompletionState{selected: -1}
}

// Activate starts a session. The candidates must all come from one query
// and therefore share the same replacement span.
func (cs *CompletionState) Activate(candidates []completion.Candidate, originalText string, originalCursor int) {
	cs.active = len(candidates) > 0
	cs.candidates = candidates
	cs.selected = -1
	cs.originalText = originalText
	cs.originalCursor = originalCursor
	if cs.active {
		cs.start = candidates[0].Start
		cs.end = candidates[0].End
	}
}

// IsActive returns true if completion mode is currently active.
func (cs *CompletionState) IsActive() bool {
	return cs.active
}

// IsVisible returns true when there is more than one candidate to show.
func (cs *CompletionState) IsVisible() bool {
	return cs.active && len(cs.candidates) > 1
}

// Candidates returns the current candidates.
func (cs *CompletionState) Candidates() []completion.Candidate {
	return cs.candidates
}

// Selected returns the index of the selected candidate, or -1.
func (cs *CompletionState) Selected() int {
	return cs.selected
}

// Span returns the rune range the selected candidate occupies in the buffer.
func (cs *CompletionState) Span() (start, end int) {
	return cs.start, cs.end
}

// Current returns the selected candidate.
func (cs *CompletionState) Current() (completion.Candidate, bool) {
	if !cs.active || cs.selected < 0 || cs.selected >= len(cs.candidates) {
		return completion.Candidate{}, false
	}
	return cs.candidates[cs.selected], true
}

// Next selects the next candidate, wrapping around.
func (cs *CompletionState) Next() (completion.Candidate, bool) {
	if !cs.active {
		return completion.Candidate{}, false
	}
	cs.selected = (cs.selected + 1) % len(cs.candidates)
	return cs.candidates[cs.selected], true
}

// Prev selects the previous candidate, wrapping around.
func (cs *CompletionState) Prev() (completion.Candidate, bool) {
	if !cs.active {
		return completion.Candidate{}, false
	}
	cs.selected--
	if cs.selected < 0 {
		cs.selected = len(cs.candidates) - 1
	}
	return cs.candidates[cs.selected], true
}

// Apply writes candidate into buf over the current span and records the new
// span end.
func (cs *CompletionState) Apply(buf *Buffer, candidate completion.Candidate) {
	buf.ReplaceRange(cs.start, cs.end, candidate.Text)
	cs.end = buf.Pos()
}

// Cancel ends the session and returns the text and cursor from before it started.
func (cs *CompletionState) Cancel() (text string, cursor int) {
	text, cursor = cs.originalText, cs.originalCursor
	cs.Reset()
	return text, cursor
}
