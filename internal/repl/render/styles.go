// Package render formats fsagent REPL output for the terminal.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI colors used across the REPL.
const (
	ColorCyan   = lipgloss.Color("12") // Headers and directories
	ColorYellow = lipgloss.Color("11") // Running tools, highlights
	ColorGreen  = lipgloss.Color("10") // Success indicator
	ColorRed    = lipgloss.Color("9")  // Error indicator
	ColorGray   = lipgloss.Color("8")  // Dim/secondary (timing, meta info)
)

// Symbols printed in front of REPL output lines.
const (
	SymbolToolPending   = "○" // Tool running
	SymbolToolComplete  = "●" // Tool finished
	SymbolSuccess       = "✓"
	SymbolError         = "✗"
	SymbolSystemMessage = "→"
	SymbolTruncated     = "…"
)

var (
	// HeaderStyle is used for section headers such as file paths.
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// DirectoryStyle is used for directory entries and completion candidates.
	DirectoryStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// ToolPendingStyle is used for running tool status.
	ToolPendingStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// HighlightStyle marks search hits inside matched lines.
	HighlightStyle = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)

	// SuccessStyle is used for success indicators.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// ErrorStyle is used for error indicators.
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	// DimStyle is used for secondary information like sizes and line numbers.
	DimStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// SystemMessageStyle is used for system/status messages.
	SystemMessageStyle = lipgloss.NewStyle().Foreground(ColorGray)
)

// StyledSymbol returns a symbol with appropriate styling applied.
func StyledSymbol(symbol string, success bool) string {
	switch symbol {
	case SymbolToolPending:
		return ToolPendingStyle.Render(symbol)
	case SymbolToolComplete:
		if success {
			return SuccessStyle.Render(symbol)
		}
		return ErrorStyle.Render(symbol)
	case SymbolSuccess:
		return SuccessStyle.Render(symbol)
	case SymbolError:
		return ErrorStyle.Render(symbol)
	case SymbolSystemMessage, SymbolTruncated:
		return SystemMessageStyle.Render(symbol)
	default:
		return symbol
	}
}
