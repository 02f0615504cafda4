package agent

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Entry types reported by list_files.
const (
	EntryTypeFile      = "file"
	EntryTypeDirectory = "directory"
)

// ListFilesRequest is the input of the list_files tool.
type ListFilesRequest struct {
	Directory string `json:"directory"`
	// Recursive defaults to the tool's configured default when nil.
	Recursive *bool `json:"recursive,omitempty"`
}

// FileEntry describes one listed file or directory.
type FileEntry struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	FullPath string `json:"full_path"`
	Depth    int    `json:"depth"`
}

// ListSummary aggregates a listing.
type ListSummary struct {
	Directories    int    `json:"directories"`
	Files          int    `json:"files"`
	TotalSize      int64  `json:"total_size"`
	TotalSizeHuman string `json:"total_size_human"`
}

// ListFilesResponse is the output of the list_files tool.
type ListFilesResponse struct {
	Directory string      `json:"directory"`
	Recursive bool        `json:"recursive"`
	Entries   []FileEntry `json:"entries"`
	Summary   ListSummary `json:"summary"`
	Error     string      `json:"error,omitempty"`
}

// ListFiles walks req.Directory and returns its files and directories,
// skipping ignored paths. Entries are sorted by relative path. Files that
// disappear or cannot be stat'ed during the walk are skipped.
func (t *FileTools) ListFiles(ctx context.Context, req ListFilesRequest) ListFilesResponse {
	recursive := t.defaultRecursive
	if req.Recursive != nil {
		recursive = *req.Recursive
	}

	directory, err := filepath.Abs(defaultDirectory(req.Directory))
	resp := ListFilesResponse{Directory: directory, Recursive: recursive, Entries: []FileEntry{}}
	if err != nil {
		resp.Error = fmt.Sprintf("failed to resolve path: %v", err)
		return resp
	}

	t.logger.Debug("list_files", zap.String("directory", directory), zap.Bool("recursive", recursive))

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

	err = filepath.WalkDir(directory, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == directory {
			return walkErr
		}
		if walkErr != nil {
			t.logger.Debug("list_files: skipping unreadable path", zap.String("path", path), zap.Error(walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if t.shouldIgnore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(directory, path)
		if err != nil {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator))

		if d.IsDir() {
			resp.Entries = append(resp.Entries, FileEntry{
				Path:     rel,
				Type:     EntryTypeDirectory,
				FullPath: path,
				Depth:    depth + 1,
			})
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return nil
		}
		resp.Entries = append(resp.Entries, FileEntry{
			Path:     rel,
			Type:     EntryTypeFile,
			Size:     fileInfo.Size(),
			FullPath: path,
			Depth:    depth,
		})
		return nil
	})
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	slices.SortFunc(resp.Entries, func(a, b FileEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	resp.Summary = summarize(resp.Entries)
	return resp
}

func summarize(entries []FileEntry) ListSummary {
	files := lo.Filter(entries, func(e FileEntry, _ int) bool {
		return e.Type == EntryTypeFile
	})
	total := lo.SumBy(files, func(e FileEntry) int64 {
		return e.Size
	})
	return ListSummary{
		Directories:    len(entries) - len(files),
		Files:          len(files),
		TotalSize:      total,
		TotalSizeHuman: humanize.Bytes(uint64(total)),
	}
}

func defaultDirectory(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
