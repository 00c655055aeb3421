package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// TempPrefix marks in-flight upload files inside the shared root.
const TempPrefix = ".lanshare-upload-"

var ErrNotFound = errors.New("file not found")

// Store defines the operations the upload and delete workflows need from
// the shared directory.
type Store interface {
	EnsureDir() error
	Resolve(name string) (string, error)
	Save(name string, data io.Reader) (*SavedFile, error)
	Lookup(name string) (string, os.FileInfo, error)
	Delete(path string) error
}

// SavedFile describes a file that has been moved into place.
type SavedFile struct {
	Name   string
	Path   string
	Size   int64
	Digest string // hex BLAKE2b-256 of the written bytes
}

// Entry is one row of a directory listing.
type Entry struct {
	Name      string
	IsDir     bool
	IsSymlink bool
	Size      int64
	ModTime   time.Time
}

// FileSystemStore stores files flat in a single shared directory.
type FileSystemStore struct {
	*Sanitizer
}

func NewFileSystemStore(root string, protected ProtectedSet) *FileSystemStore {
	return &FileSystemStore{Sanitizer: NewSanitizer(root, protected)}
}

// EnsureDir creates the shared directory if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.root, 0755); err != nil {
		return fmt.Errorf("failed to create shared directory %s: %w", fs.root, err)
	}
	return nil
}

// Save writes data to a temporary file next to the destination and renames
// it over the destination, so readers never observe a partial file and an
// existing file with the same name is replaced.
func (fs *FileSystemStore) Save(name string, data io.Reader) (*SavedFile, error) {
	dest, err := fs.Resolve(name)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), TempPrefix+"*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	hasher, _ := blake2b.New256(nil)
	n, err := io.Copy(io.MultiWriter(tmp, hasher), data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, dest)
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return &SavedFile{
		Name:   filepath.Base(dest),
		Path:   dest,
		Size:   n,
		Digest: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Lookup resolves name and returns its path and info. Anything that is not
// a regular file (after following symlinks) reports ErrNotFound.
func (fs *FileSystemStore) Lookup(name string) (string, os.FileInfo, error) {
	p, err := fs.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to stat %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, ErrNotFound
	}
	return p, info, nil
}

// Delete removes path. A file that is already gone counts as deleted.
func (fs *FileSystemStore) Delete(p string) error {
	if _, err := os.Lstat(p); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", p, err)
	}
	return nil
}

// Locate maps a URL path onto the shared tree. Unlike Resolve it keeps
// subdirectories, but rejects escapes and protected basenames.
func (fs *FileSystemStore) Locate(urlPath string) (string, os.FileInfo, error) {
	rel := cleanRelPath(urlPath)
	if rel != "" {
		base := path.Base(rel)
		if fs.IsProtected(base) || strings.HasPrefix(base, TempPrefix) {
			return "", nil, ErrNotFound
		}
	}
	abs, err := joinWithinRoot(fs.root, rel)
	if err != nil {
		return "", nil, ErrInvalidName
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, ErrNotFound
	}
	return abs, info, nil
}

// List returns the visible entries of dir sorted case-insensitively.
// Protected names and upload temp files are hidden.
func (fs *FileSystemStore) List(dir string) ([]Entry, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(ents))
	for _, e := range ents {
		name := e.Name()
		if fs.protected.Contains(name) || strings.HasPrefix(name, TempPrefix) {
			continue
		}
		entry := Entry{
			Name:      name,
			IsSymlink: e.Type()&os.ModeSymlink != 0,
		}
		// Stat follows symlinks so a link to a directory lists as one.
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil {
			entry.IsDir = info.IsDir()
			entry.Size = info.Size()
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries, nil
}

func cleanRelPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "." || p == "/" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func joinWithinRoot(root, rel string) (string, error) {
	if rel == "" {
		return root, nil
	}
	if strings.ContainsRune(rel, 0) {
		return "", errors.New("invalid path")
	}
	abs := filepath.Clean(filepath.Join(root, filepath.FromSlash(rel)))
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", errors.New("path escape")
	}
	return abs, nil
}
