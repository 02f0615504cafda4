package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

type suffixIgnorer []string

func (s suffixIgnorer) ShouldIgnore(path string) bool {
	for _, suffix := range s {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func setupListDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "README.md", "hello")
	writeTestFile(t, dir, "src/main.go", "package main\n")
	writeTestFile(t, dir, "src/util/util.go", "package util\n")
	writeTestFile(t, dir, "node_modules/pkg/index.js", "module.exports = 1\n")
	return dir
}

func entryPaths(entries []FileEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.ToSlash(e.Path))
	}
	return paths
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("recursive with ignore", func(t *testing.T) {
		dir := setupListDir(t)
		tools := NewFileTools(Options{Ignorer: suffixIgnorer{"node_modules"}, DefaultRecursive: true})

		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: dir})
		if resp.Error != "" {
			t.Fatalf("unexpected error: %s", resp.Error)
		}

		got := strings.Join(entryPaths(resp.Entries), ",")
		expected := "README.md,src,src/main.go,src/util,src/util/util.go"
		if got != expected {
			t.Errorf("expected %s, got %s", expected, got)
		}
		if resp.Summary.Files != 3 || resp.Summary.Directories != 2 {
			t.Errorf("unexpected summary: %+v", resp.Summary)
		}
		if resp.Summary.TotalSize != int64(len("hello")+len("package main\n")+len("package util\n")) {
			t.Errorf("unexpected total size: %d", resp.Summary.TotalSize)
		}
		if resp.Summary.TotalSizeHuman == "" {
			t.Error("expected human readable size")
		}
	})

	t.Run("depths", func(t *testing.T) {
		dir := setupListDir(t)
		tools := NewFileTools(Options{Ignorer: suffixIgnorer{"node_modules"}, DefaultRecursive: true})

		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: dir})
		depths := map[string]int{}
		for _, e := range resp.Entries {
			depths[filepath.ToSlash(e.Path)] = e.Depth
		}
		expected := map[string]int{
			"README.md":        0,
			"src":              1,
			"src/main.go":      1,
			"src/util":         2,
			"src/util/util.go": 2,
		}
		for path, depth := range expected {
			if depths[path] != depth {
				t.Errorf("%s: expected depth %d, got %d", path, depth, depths[path])
			}
		}
	})

	t.Run("non recursive", func(t *testing.T) {
		dir := setupListDir(t)
		tools := NewFileTools(Options{DefaultRecursive: true})
		recursive := false

		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: dir, Recursive: &recursive})
		got := strings.Join(entryPaths(resp.Entries), ",")
		if got != "README.md,node_modules,src" {
			t.Errorf("unexpected entries: %s", got)
		}
		if resp.Recursive {
			t.Error("expected recursive=false in response")
		}
	})

	t.Run("full paths are absolute", func(t *testing.T) {
		dir := setupListDir(t)
		tools := NewFileTools(Options{})

		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: dir})
		for _, e := range resp.Entries {
			if e.FullPath != filepath.Join(dir, e.Path) {
				t.Errorf("unexpected full path %s for %s", e.FullPath, e.Path)
			}
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		tools := NewFileTools(Options{})
		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: filepath.Join(t.TempDir(), "missing")})
		if !strings.Contains(resp.Error, "does not exist") {
			t.Errorf("expected does not exist error, got %q", resp.Error)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "f.txt", "x")
		tools := NewFileTools(Options{})
		resp := tools.ListFiles(ctx, ListFilesRequest{Directory: path})
		if !strings.Contains(resp.Error, "is not a directory") {
			t.Errorf("expected not a directory error, got %q", resp.Error)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := setupListDir(t)
		tools := NewFileTools(Options{DefaultRecursive: true})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		resp := tools.ListFiles(cancelled, ListFilesRequest{Directory: dir})
		if resp.Error == "" {
			t.Error("expected error for cancelled context")
		}
	})
}
