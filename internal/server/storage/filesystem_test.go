package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func newTestStore(t *testing.T, protected ...string) (*FileSystemStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileSystemStore(dir, NewProtectedSet(protected...)), dir
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), TempPrefix) {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileSystemStore_Save(t *testing.T) {
	t.Run("saves file to disk", func(t *testing.T) {
		store, dir := newTestStore(t)

		saved, err := store.Save("a.txt", bytes.NewReader([]byte("hello")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if saved.Size != 5 {
			t.Errorf("expected 5 bytes written, got %d", saved.Size)
		}
		if saved.Name != "a.txt" || saved.Path != filepath.Join(dir, "a.txt") {
			t.Errorf("unexpected saved file: %+v", saved)
		}
		if len(saved.Digest) != 64 {
			t.Errorf("expected 64-char hex digest, got %q", saved.Digest)
		}

		content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "hello" {
			t.Errorf("expected 'hello', got %q", content)
		}
		assertNoTempFiles(t, dir)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		store, dir := newTestStore(t)
		os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old content"), 0644)

		if _, err := store.Save("a.txt", strings.NewReader("new")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
		if string(content) != "new" {
			t.Errorf("expected 'new', got %q", content)
		}
	})

	t.Run("zero-byte file", func(t *testing.T) {
		store, dir := newTestStore(t)

		saved, err := store.Save("empty.bin", bytes.NewReader(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(filepath.Join(dir, "empty.bin"))
		if err != nil {
			t.Fatalf("expected file to exist: %v", err)
		}
		if info.Size() != 0 || saved.Size != 0 {
			t.Errorf("expected zero-length file, got %d", info.Size())
		}
	})

	t.Run("strips directories from name", func(t *testing.T) {
		store, dir := newTestStore(t)

		saved, err := store.Save("../../escape.txt", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Path != filepath.Join(dir, "escape.txt") {
			t.Errorf("expected file inside root, got %s", saved.Path)
		}
	})

	t.Run("refuses protected name before writing", func(t *testing.T) {
		store, dir := newTestStore(t, "lanshare")
		os.WriteFile(filepath.Join(dir, "lanshare"), []byte("binary"), 0644)

		_, err := store.Save("lanshare", strings.NewReader("evil"))
		if !errors.Is(err, ErrProtected) {
			t.Fatalf("expected ErrProtected, got %v", err)
		}
		content, _ := os.ReadFile(filepath.Join(dir, "lanshare"))
		if string(content) != "binary" {
			t.Errorf("protected file was modified: %q", content)
		}
	})

	t.Run("failed write removes temp file and keeps original", func(t *testing.T) {
		store, dir := newTestStore(t)
		os.WriteFile(filepath.Join(dir, "a.txt"), []byte("original"), 0644)

		_, err := store.Save("a.txt", io.MultiReader(strings.NewReader("partial"), failingReader{}))
		if err == nil {
			t.Fatal("expected error from failing reader")
		}
		if !strings.Contains(err.Error(), "a.txt") {
			t.Errorf("expected error to carry filename, got %v", err)
		}

		content, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
		if string(content) != "original" {
			t.Errorf("expected original content, got %q", content)
		}
		assertNoTempFiles(t, dir)
	})
}

func TestFileSystemStore_Lookup(t *testing.T) {
	t.Run("returns path for existing file", func(t *testing.T) {
		store, dir := newTestStore(t)
		filePath := filepath.Join(dir, "data.txt")
		os.WriteFile(filePath, []byte("data"), 0644)

		p, info, err := store.Lookup("data.txt")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != filePath {
			t.Errorf("expected %s, got %s", filePath, p)
		}
		if info.Size() != 4 {
			t.Errorf("expected size 4, got %d", info.Size())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		store, _ := newTestStore(t)

		if _, _, err := store.Lookup("nonexistent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("directory is not a file", func(t *testing.T) {
		store, dir := newTestStore(t)
		os.Mkdir(filepath.Join(dir, "sub"), 0755)

		if _, _, err := store.Lookup("sub"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("protected file", func(t *testing.T) {
		store, dir := newTestStore(t, "lanshare")
		os.WriteFile(filepath.Join(dir, "lanshare"), []byte("bin"), 0644)

		if _, _, err := store.Lookup("lanshare"); !errors.Is(err, ErrProtected) {
			t.Errorf("expected ErrProtected, got %v", err)
		}
	})
}

func TestFileSystemStore_Delete(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		store, dir := newTestStore(t)
		filePath := filepath.Join(dir, "del.txt")
		os.WriteFile(filePath, []byte("data"), 0644)

		if err := store.Delete(filePath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filePath); !os.IsNotExist(err) {
			t.Error("expected file to be deleted")
		}
	})

	t.Run("no error for missing file", func(t *testing.T) {
		store, dir := newTestStore(t)

		if err := store.Delete(filepath.Join(dir, "nonexistent")); err != nil {
			t.Errorf("expected no error for missing file, got: %v", err)
		}
	})
}

func TestFileSystemStore_EnsureDir(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "share")
		store := NewFileSystemStore(dir, NewProtectedSet())

		if err := store.EnsureDir(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected a directory")
		}
	})
}

func TestFileSystemStore_List(t *testing.T) {
	store, dir := newTestStore(t, "lanshare")
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bb"), 0644)
	os.WriteFile(filepath.Join(dir, "A.txt"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(dir, "lanshare"), []byte("bin"), 0644)
	os.WriteFile(filepath.Join(dir, TempPrefix+"123.tmp"), []byte("partial"), 0644)
	os.Mkdir(filepath.Join(dir, "c"), 0755)

	entries, err := store.List(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "A.txt,b.txt,c" {
		t.Fatalf("unexpected listing: %v", names)
	}
	if entries[1].Size != 2 {
		t.Errorf("expected b.txt size 2, got %d", entries[1].Size)
	}
	if !entries[2].IsDir {
		t.Error("expected c to be a directory")
	}
}

func TestFileSystemStore_Locate(t *testing.T) {
	store, dir := newTestStore(t, "lanshare")
	os.MkdirAll(filepath.Join(dir, "sub"), 0755)
	os.WriteFile(filepath.Join(dir, "sub", "x.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "sub", "lanshare"), []byte("bin"), 0644)
	os.WriteFile(filepath.Join(dir, TempPrefix+"1.tmp"), []byte("partial"), 0644)

	tests := []struct {
		name    string
		urlPath string
		want    string
		wantErr error
	}{
		{"root", "/", dir, nil},
		{"nested file", "/sub/x.txt", filepath.Join(dir, "sub", "x.txt"), nil},
		{"dotdot clamps to root", "/../../sub", filepath.Join(dir, "sub"), nil},
		{"protected anywhere", "/sub/lanshare", "", ErrNotFound},
		{"upload temp file", "/" + TempPrefix + "1.tmp", "", ErrNotFound},
		{"missing", "/nope", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := store.Locate(tt.urlPath)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
