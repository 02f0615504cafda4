package completion

import (
	"os"
	"path/filepath"
)

// DirEntry is a single entry of a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// DirLister lists a single directory level.
type DirLister interface {
	// ListDir returns the entries of the directory at path. It fails when the
	// path is missing, unreadable or not a directory.
	ListDir(path string) ([]DirEntry, error)
}

// ListerFunc adapts a plain function to the DirLister interface.
type ListerFunc func(path string) ([]DirEntry, error)

// ListDir implements DirLister.
func (f ListerFunc) ListDir(path string) ([]DirEntry, error) {
	return f(path)
}

// OSLister lists directories on the local filesystem.
type OSLister struct{}

// ListDir implements DirLister using os.ReadDir. The directory handle is
// closed before returning. Symlinks to directories are reported as
// directories.
func (OSLister) ListDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, entry.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		result = append(result, DirEntry{Name: entry.Name(), IsDir: isDir})
	}
	return result, nil
}
