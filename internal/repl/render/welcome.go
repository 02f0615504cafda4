package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// WelcomeInfo contains information to display in the welcome screen.
type WelcomeInfo struct {
	// Version is the fsagent version string.
	Version string
	// Trigger is the path completion trigger symbol (empty when disabled).
	Trigger string
	// WorkDir is the directory tools operate on by default.
	WorkDir string
}

// tips is the list of tips to display in the welcome screen.
// A "tip of the day" is selected based on the current date.
var tips = []string{
	"type @ followed by a path and press Tab to complete it",
	"press Tab again to cycle through completions, Shift+Tab to go back",
	"press Esc to restore the text from before completion",
	"start a path with @. to complete hidden files",
	"use @~/ to complete paths in your home directory",
	"use read @file 10 20 to view a line range",
	"use grep <text> @dir to search a directory",
	"use tools to print the agent tool definitions as JSON",
	"use history <query> to fuzzy-search previous commands",
	"press Up/Down to navigate command history",
	"press Ctrl+V to paste from the clipboard",
	"set logLevel: debug in ~/.fsagent/config.yaml for troubleshooting",
	"add ignorePatterns in ~/.fsagent/config.yaml to hide generated files",
	"press Ctrl+D on an empty line to exit",
}

var logo = []string{
	"  __              ",
	" / _|___  __ _    ",
	"| |_/ __|/ _` |   ",
	"|  _\\__ \\ (_| |   ",
	"|_| |___/\\__,_|   ",
}

// getTipOfTheDay returns a tip based on the given date.
func getTipOfTheDay(now time.Time) string {
	if len(tips) == 0 {
		return ""
	}
	return tips[now.YearDay()%len(tips)]
}

// RenderWelcome renders the welcome screen to the given writer.
func RenderWelcome(w io.Writer, info WelcomeInfo, termWidth int) {
	titleStyle := lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	logoStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	labelStyle := lipgloss.NewStyle().Foreground(ColorGray)
	valueStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	dimStyle := lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

	infoLines := []string{titleStyle.Render("fsagent"), ""}

	switch info.Version {
	case "":
	case "dev":
		infoLines = append(infoLines, labelStyle.Render("version: ")+dimStyle.Render("development"))
	default:
		infoLines = append(infoLines, labelStyle.Render("version: ")+valueStyle.Render(info.Version))
	}

	if info.Trigger != "" {
		infoLines = append(infoLines, labelStyle.Render("trigger: ")+valueStyle.Render(info.Trigger))
	} else {
		infoLines = append(infoLines, labelStyle.Render("trigger: ")+dimStyle.Render("word under cursor"))
	}

	if info.WorkDir != "" {
		infoLines = append(infoLines, labelStyle.Render("workdir: ")+valueStyle.Render(info.WorkDir))
	}

	tip := getTipOfTheDay(time.Now())
	var output strings.Builder
	output.WriteString("\n")

	if termWidth < 60 {
		for _, line := range infoLines {
			output.WriteString(line + "\n")
		}
	} else {
		logoBlock := logoStyle.Render(strings.Join(logo, "\n"))
		infoBlock := strings.Join(infoLines, "\n")
		output.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, logoBlock, "  ", infoBlock))
		output.WriteString("\n")
	}

	output.WriteString("\n")
	if tip != "" {
		output.WriteString(dimStyle.Render("tip: "+tip) + "\n")
	}
	output.WriteString("\n")

	fmt.Fprint(w, output.String())
}
