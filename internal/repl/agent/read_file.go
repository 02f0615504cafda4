package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ReadFileRequest is the input of the read_file tool.
type ReadFileRequest struct {
	FilePath string `json:"file_path"`
	// StartLine and EndLine select an inclusive, 1-indexed line range.
	// Zero means the start or end of the file.
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`
	// LineNumbers prefixes each line with a 5-digit line number ("    1:text").
	LineNumbers bool `json:"line_numbers,omitempty"`
}

// ReadFileResponse is the output of the read_file tool.
type ReadFileResponse struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	TotalLines int    `json:"total_lines"`
	Truncated  bool   `json:"truncated,omitempty"`
	Error      string `json:"error,omitempty"`
}

const truncationMarker = "(truncated)"

// ReadFile returns the text content of a file. Line endings are normalized
// to "\n". Output larger than the configured limit keeps the first and last
// lines and replaces the middle with a "(truncated)" marker.
func (t *FileTools) ReadFile(ctx context.Context, req ReadFileRequest) ReadFileResponse {
	path, err := filepath.Abs(req.FilePath)
	resp := ReadFileResponse{Path: path}
	if req.FilePath == "" {
		resp.Error = "file_path must not be empty"
		return resp
	}
	if err != nil {
		resp.Error = fmt.Sprintf("failed to resolve path: %v", err)
		return resp
	}
	if err := ctx.Err(); err != nil {
		resp.Error = err.Error()
		return resp
	}

	t.logger.Debug("read_file", zap.String("path", path), zap.Int("start", req.StartLine), zap.Int("end", req.EndLine))

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			resp.Error = fmt.Sprintf("File '%s' does not exist", path)
		} else {
			resp.Error = fmt.Sprintf("failed to stat '%s': %v", path, err)
		}
		return resp
	}
	if !info.Mode().IsRegular() {
		resp.Error = fmt.Sprintf("'%s' is not a file", path)
		return resp
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to read file: %v", err)
		return resp
	}
	if !utf8.Valid(raw) {
		resp.Error = fmt.Sprintf("'%s' is not a UTF-8 text file", path)
		return resp
	}

	content := normalizeNewlines(string(raw))
	lines := splitLines(content)
	resp.TotalLines = len(lines)

	ranged := req.StartLine > 0 || req.EndLine > 0
	if !ranged && !req.LineNumbers {
		resp.Content = content
		if len(content) > t.maxReadBytes {
			resp.Content = truncateFromMiddle(lines, t.maxReadBytes)
			resp.Truncated = true
		}
		return resp
	}

	start, end := req.StartLine, req.EndLine
	if start <= 0 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > len(lines) {
		resp.Error = fmt.Sprintf("start_line (%d) exceeds file length (%d lines)", start, len(lines))
		return resp
	}
	if start > end {
		resp.Error = fmt.Sprintf("invalid line range: start_line (%d) > end_line (%d)", start, end)
		return resp
	}

	selected := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		if req.LineNumbers {
			selected = append(selected, fmt.Sprintf("%5d:%s", i, lines[i-1]))
		} else {
			selected = append(selected, lines[i-1])
		}
	}

	resp.Content = strings.Join(selected, "\n")
	if len(resp.Content) > t.maxReadBytes {
		resp.Content = truncateFromMiddle(selected, t.maxReadBytes)
		resp.Truncated = true
	}
	return resp
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitLines splits normalized content into lines. A trailing newline does
// not start an extra empty line.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// truncateFromMiddle removes lines from the middle of the output to fit within maxLen,
// replacing them with a "(truncated)" marker.
func truncateFromMiddle(lines []string, maxLen int) string {
	if len(lines) == 0 {
		return ""
	}

	totalLen := -1
	for _, line := range lines {
		totalLen += len(line) + 1
	}
	if totalLen <= maxLen {
		return strings.Join(lines, "\n")
	}

	halfTarget := (maxLen - len(truncationMarker) - 2) / 2

	head, headLen := 0, 0
	for i := 0; i < len(lines); i++ {
		lineLen := len(lines[i])
		if i > 0 {
			lineLen++
		}
		if headLen+lineLen > halfTarget {
			break
		}
		headLen += lineLen
		head++
	}

	tail, tailLen := 0, 0
	for i := len(lines) - 1; i >= 0; i-- {
		lineLen := len(lines[i])
		if tail > 0 {
			lineLen++
		}
		if tailLen+lineLen > halfTarget {
			break
		}
		tailLen += lineLen
		tail++
	}

	if head+tail >= len(lines) {
		head = len(lines) / 2
		tail = max(len(lines)-head-1, 0)
	}

	var b strings.Builder
	for _, line := range lines[:head] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(truncationMarker)
	if tail > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(lines[len(lines)-tail:], "\n"))
	}
	return b.String()
}
