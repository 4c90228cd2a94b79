package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one entry under the uploads directory.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"` // relative to the uploads root
	Size    int64     `json:"size"`
	IsDir   bool      `json:"isDir"`
	ModTime time.Time `json:"modTime"`
}

// Store manages files under a single uploads directory.
// All paths passed in are relative to that directory and are
// rejected if they escape it.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads directory is not configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute uploads root.
func (s *Store) Root() string {
	return s.root
}

// Resolve turns a user-supplied relative path into an absolute path
// inside the uploads root. Traversal outside the root is an error.
func (s *Store) Resolve(rel string) (string, error) {
	cleaned := filepath.Clean("/" + rel) // force the path to be absolute before cleaning
	full := filepath.Join(s.root, cleaned)
	if full != s.root && !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes the uploads directory", rel)
	}
	return full, nil
}

// Save writes the content of r to dir/filename inside the uploads root.
// An existing file with the same name is overwritten.
func (s *Store) Save(dir, filename string, r io.Reader) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	target, err := s.Resolve(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	rel, err := filepath.Rel(s.root, target)
	if err != nil {
		return "", err
	}
	return rel, nil
}

// List returns the entries of one directory, directories first.
func (s *Store) List(dir string) ([]FileInfo, error) {
	full, err := s.Resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(s.root, filepath.Join(full, e.Name()))
		if err != nil {
			continue
		}
		infos = append(infos, FileInfo{
			Name:    e.Name(),
			Path:    filepath.ToSlash(rel),
			Size:    fi.Size(),
			IsDir:   e.IsDir(),
			ModTime: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDir != infos[j].IsDir {
			return infos[i].IsDir
		}
		return infos[i].Name < infos[j].Name
	})

	return infos, nil
}

// Search walks the whole tree and returns files whose name contains
// query (case-insensitive). ext, when non-empty, additionally filters
// by extension ("pdf" matches "report.pdf").
func (s *Store) Search(query, ext string) ([]FileInfo, error) {
	query = strings.ToLower(query)
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	var results []FileInfo
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			return nil
		}
		if ext != "" && strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) != ext {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		results = append(results, FileInfo{
			Name:    name,
			Path:    filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Open opens a stored file for reading.
func (s *Store) Open(rel string) (*os.File, os.FileInfo, error) {
	full, err := s.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("%q is a directory", rel)
	}
	return f, fi, nil
}

// Remove deletes a single file. Directories are removed only when empty.
func (s *Store) Remove(rel string) error {
	full, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if full == s.root {
		return fmt.Errorf("refusing to remove the uploads root")
	}
	return os.Remove(full)
}
