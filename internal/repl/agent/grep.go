package agent

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// binarySniffLen is how many leading bytes are checked for NUL to detect binary files.
const binarySniffLen = 8000

// maxLineLen bounds the length of a single scanned line. Files with longer
// lines are searched up to that point.
const maxLineLen = 1024 * 1024

var errMatchLimit = errors.New("match limit reached")

// GrepRequest is the input of the grep tool.
type GrepRequest struct {
	SearchString string `json:"search_string"`
	Directory    string `json:"directory"`
}

// GrepMatch is one matching line.
type GrepMatch struct {
	FilePath    string `json:"file_path"`
	LineNumber  int    `json:"line_number"`
	LineContent string `json:"line_content"`
}

// GrepResponse is the output of the grep tool.
type GrepResponse struct {
	SearchString string      `json:"search_string"`
	Directory    string      `json:"directory"`
	Matches      []GrepMatch `json:"matches"`
	Truncated    bool        `json:"truncated,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// Grep searches every non-ignored text file below req.Directory for lines
// containing req.SearchString as a plain substring. Matches are reported in
// walk order with paths relative to the searched directory. Searching stops
// once the configured match limit is reached.
func (t *FileTools) Grep(ctx context.Context, req GrepRequest) GrepResponse {
	directory, err := filepath.Abs(defaultDirectory(req.Directory))
	resp := GrepResponse{SearchString: req.SearchString, Directory: directory, Matches: []GrepMatch{}}
	if req.SearchString == "" {
		resp.Error = "search_string must not be empty"
		return resp
	}
	if err != nil {
		resp.Error = fmt.Sprintf("failed to resolve path: %v", err)
		return resp
	}

	info, err := os.Stat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			resp.Error = fmt.Sprintf("Directory '%s' does not exist", directory)
		} else {
			resp.Error = fmt.Sprintf("failed to stat '%s': %v", directory, err)
		}
		return resp
	}
	if !info.IsDir() {
		resp.Error = fmt.Sprintf("'%s' is not a directory", directory)
		return resp
	}

	t.logger.Debug("grep", zap.String("directory", directory), zap.String("search", req.SearchString))

	needle := []byte(req.SearchString)
	err = filepath.WalkDir(directory, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == directory {
				return walkErr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != directory && t.shouldIgnore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(directory, path)
		if err != nil {
			rel = path
		}
		return t.grepFile(path, rel, needle, &resp)
	})

	switch {
	case errors.Is(err, errMatchLimit):
		resp.Truncated = true
	case err != nil:
		resp.Error = err.Error()
	}

	t.logger.Debug("grep finished", zap.Int("matches", len(resp.Matches)), zap.Bool("truncated", resp.Truncated))
	return resp
}

// grepFile appends the matches of one file to resp. Unreadable and binary
// files are skipped.
func (t *FileTools) grepFile(path, rel string, needle []byte, resp *GrepResponse) error {
	f, err := os.Open(path)
	if err != nil {
		t.logger.Debug("grep: skipping unreadable file", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, binarySniffLen)
	head, err := reader.Peek(binarySniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		if !bytes.Contains(line, needle) {
			continue
		}
		if len(resp.Matches) >= t.maxGrepMatches {
			return errMatchLimit
		}
		resp.Matches = append(resp.Matches, GrepMatch{
			FilePath:    rel,
			LineNumber:  lineNumber,
			LineContent: strings.TrimSpace(strings.ToValidUTF8(string(line), "")),
		})
	}
	if err := scanner.Err(); err != nil {
		t.logger.Debug("grep: stopped reading file", zap.String("path", path), zap.Error(err))
	}
	return nil
}
