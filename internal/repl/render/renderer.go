package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/atinylittleshell/fsagent/internal/repl/agent"
)

// Renderer writes tool results and status lines to a writer.
type Renderer struct {
	writer    io.Writer
	termWidth func() int
}

// New creates a Renderer. termWidth may be nil, in which case 80 columns
// are assumed.
func New(writer io.Writer, termWidth func() int) *Renderer {
	return &Renderer{writer: writer, termWidth: termWidth}
}

// RenderToolStart prints the running status line of a tool.
func (r *Renderer) RenderToolStart(toolName, target string) {
	line := StyledSymbol(SymbolToolPending, true) + " " + toolName
	if target != "" {
		line += " " + DimStyle.Render(target)
	}
	fmt.Fprintln(r.writer, r.fit(line))
}

// RenderToolComplete prints the completion status line of a tool.
func (r *Renderer) RenderToolComplete(toolName string, duration time.Duration, success bool) {
	symbol := SymbolSuccess
	if !success {
		symbol = SymbolError
	}
	fmt.Fprintf(r.writer, "%s %s %s %s\n",
		StyledSymbol(SymbolToolComplete, success),
		toolName,
		StyledSymbol(symbol, success),
		DimStyle.Render(fmt.Sprintf("(%.1fs)", duration.Seconds())),
	)
}

// RenderListing prints a list_files response as an indented tree.
func (r *Renderer) RenderListing(resp agent.ListFilesResponse) {
	if resp.Error != "" {
		r.RenderError(resp.Error)
		return
	}

	fmt.Fprintln(r.writer, HeaderStyle.Render(resp.Directory))
	for _, entry := range resp.Entries {
		name := entry.Path[strings.LastIndexAny(entry.Path, `/\`)+1:]
		indent := strings.Repeat("  ", entry.Depth)
		var line string
		if entry.Type == agent.EntryTypeDirectory {
			indent = strings.Repeat("  ", max(entry.Depth-1, 0))
			line = indent + DirectoryStyle.Render(name+"/")
		} else {
			line = indent + name + " " + DimStyle.Render(humanize.Bytes(uint64(entry.Size)))
		}
		fmt.Fprintln(r.writer, r.fit(line))
	}
	fmt.Fprintln(r.writer, DimStyle.Render(fmt.Sprintf("%d directories, %d files, %s",
		resp.Summary.Directories, resp.Summary.Files, resp.Summary.TotalSizeHuman)))
}

// RenderFile prints a read_file response.
func (r *Renderer) RenderFile(resp agent.ReadFileResponse) {
	if resp.Error != "" {
		r.RenderError(resp.Error)
		return
	}

	fmt.Fprintln(r.writer, HeaderStyle.Render(resp.Path)+" "+DimStyle.Render(fmt.Sprintf("(%d lines)", resp.TotalLines)))
	content := strings.TrimSuffix(resp.Content, "\n")
	if content != "" {
		fmt.Fprintln(r.writer, content)
	}
	if resp.Truncated {
		r.RenderSystemMessage("output truncated")
	}
}

// RenderMatches prints a grep response grouped by file, highlighting the
// search string inside each line.
func (r *Renderer) RenderMatches(resp agent.GrepResponse) {
	if resp.Error != "" {
		r.RenderError(resp.Error)
		return
	}
	if len(resp.Matches) == 0 {
		r.RenderSystemMessage(fmt.Sprintf("no matches for %q", resp.SearchString))
		return
	}

	var files []string
	byFile := map[string][]agent.GrepMatch{}
	for _, m := range resp.Matches {
		if _, ok := byFile[m.FilePath]; !ok {
			files = append(files, m.FilePath)
		}
		byFile[m.FilePath] = append(byFile[m.FilePath], m)
	}
	slices.Sort(files)

	for _, file := range files {
		fmt.Fprintln(r.writer, HeaderStyle.Render(file))
		for _, m := range byFile[file] {
			highlighted := strings.ReplaceAll(m.LineContent, resp.SearchString, HighlightStyle.Render(resp.SearchString))
			fmt.Fprintln(r.writer, r.fit(DimStyle.Render(fmt.Sprintf("%5d:", m.LineNumber))+highlighted))
		}
	}

	summary := fmt.Sprintf("%d matches in %d files", len(resp.Matches), len(files))
	if resp.Truncated {
		summary += ", more results omitted"
	}
	r.RenderSystemMessage(summary)
}

// RenderSystemMessage renders a system/status message with → prefix.
func (r *Renderer) RenderSystemMessage(message string) {
	fmt.Fprintln(r.writer, SystemMessageStyle.Render(fmt.Sprintf("%s %s", SymbolSystemMessage, message)))
}

// RenderError renders an error message with ✗ prefix.
func (r *Renderer) RenderError(message string) {
	fmt.Fprintln(r.writer, ErrorStyle.Render(fmt.Sprintf("%s %s", SymbolError, message)))
}

// fit truncates a styled line to the terminal width.
func (r *Renderer) fit(line string) string {
	return truncate.StringWithTail(line, uint(r.getTerminalWidth()), SymbolTruncated)
}

// getTerminalWidth returns the current terminal width, with a sensible default.
func (r *Renderer) getTerminalWidth() int {
	if r.termWidth != nil {
		if width := r.termWidth(); width > 0 {
			return width
		}
	}
	return 80
}
