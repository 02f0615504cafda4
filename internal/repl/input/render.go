package input

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atinylittleshell/fsagent/internal/repl/completion"
	"github.com/atinylittleshell/fsagent/internal/repl/render"
)

// RenderConfig holds styling configuration for rendering input components.
type RenderConfig struct {
	PromptStyle          lipgloss.Style
	TextStyle            lipgloss.Style
	CursorStyle          lipgloss.Style
	CompletionPanelStyle lipgloss.Style
	SelectedStyle        lipgloss.Style
	DirectoryStyle       lipgloss.Style
}

// DefaultRenderConfig returns a RenderConfig with the REPL's default styles.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		PromptStyle: lipgloss.NewStyle().Foreground(render.ColorYellow),
		TextStyle:   lipgloss.NewStyle(),
		CursorStyle: lipgloss.NewStyle().Reverse(true),
		CompletionPanelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(render.ColorYellow),
		SelectedStyle:  lipgloss.NewStyle().Bold(true),
		DirectoryStyle: render.DirectoryStyle,
	}
}

// Renderer draws the input line and the completion box.
type Renderer struct {
	config RenderConfig
	width  int
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RenderConfig) *Renderer {
	return &Renderer{config: config, width: 80}
}

// SetWidth updates the terminal width used for layout.
func (r *Renderer) SetWidth(width int) {
	if width > 0 {
		r.width = width
	}
}

// RenderInputLine renders the prompt and the buffer, drawing the cursor when focused.
func (r *Renderer) RenderInputLine(prompt string, buffer *Buffer, focused bool) string {
	var b strings.Builder
	b.WriteString(r.config.PromptStyle.Render(prompt))
	b.WriteString(r.config.TextStyle.Render(buffer.TextBeforeCursor()))

	after := []rune(buffer.TextAfterCursor())
	if !focused {
		b.WriteString(r.config.TextStyle.Render(string(after)))
		return b.String()
	}

	if len(after) == 0 {
		b.WriteString(r.config.CursorStyle.Render(" "))
	} else {
		b.WriteString(r.config.CursorStyle.Render(string(after[0])))
		b.WriteString(r.config.TextStyle.Render(string(after[1:])))
	}
	return b.String()
}

// RenderCompletionBox renders the candidates of cs in a bordered box showing
// at most maxVisible rows with scroll indicators.
func (r *Renderer) RenderCompletionBox(cs *CompletionState, maxVisible int) string {
	if !cs.IsVisible() {
		return ""
	}
	if maxVisible <= 0 {
		maxVisible = 4
	}

	candidates := cs.Candidates()
	total := len(candidates)
	startIdx, endIdx := calculateVisibleWindow(max(cs.Selected(), 0), total, maxVisible)
	innerWidth := max(1, r.width-2)

	var content strings.Builder
	for i := startIdx; i < endIdx; i++ {
		if i > startIdx {
			content.WriteString("\n")
		}

		posInWindow := i - startIdx
		var prefix string
		switch {
		case posInWindow == 0 && startIdx > 0:
			prefix = formatScrollIndicator("↑", startIdx)
		case posInWindow == maxVisible-1 && endIdx < total:
			prefix = formatScrollIndicator("↓", total-endIdx)
		default:
			prefix = "     "
		}

		label := r.styleCandidate(candidates[i])
		if i == cs.Selected() {
			content.WriteString(prefix + "> " + r.config.SelectedStyle.Render(label))
		} else {
			content.WriteString(prefix + "  " + label)
		}
	}

	lines := strings.Split(content.String(), "\n")
	for i, line := range lines {
		lines[i] = truncate.StringWithTail(line, uint(innerWidth), render.SymbolTruncated)
	}

	return r.config.CompletionPanelStyle.
		Width(innerWidth).
		Render(strings.Join(lines, "\n"))
}

func (r *Renderer) styleCandidate(c completion.Candidate) string {
	if c.Style == completion.StyleDirectory {
		return r.config.DirectoryStyle.Render(c.Display)
	}
	return c.Display
}

// RenderFullView renders the input line followed by the completion box when visible.
func (r *Renderer) RenderFullView(prompt string, buffer *Buffer, focused bool, cs *CompletionState) string {
	var result strings.Builder

	// Start at column 0 in case log output left the cursor mid-line.
	result.WriteString("\r\033[K")
	result.WriteString(r.RenderInputLine(prompt, buffer, focused))

	if cs != nil && cs.IsVisible() {
		result.WriteString("\n")
		result.WriteString(r.RenderCompletionBox(cs, 4))
	}
	return result.String()
}

// calculateVisibleWindow determines the start and end indices for a scrolling window.
func calculateVisibleWindow(selected, total, maxVisible int) (start, end int) {
	if total <= maxVisible {
		return 0, total
	}

	// Keep the selection roughly in the middle.
	switch {
	case selected < 2:
		start = 0
	case selected >= total-2:
		start = total - maxVisible
	default:
		start = selected - 1
	}

	start = clamp(start, 0, total-maxVisible)
	return start, start + maxVisible
}

func formatScrollIndicator(arrow string, count int) string {
	return fmt.Sprintf("%s %3d", arrow, count)
}
