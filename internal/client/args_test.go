package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	tmpDir := t.TempDir()
	var paths []string

	for filename, content := range files {
		filePath := filepath.Join(tmpDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
		paths = append(paths, filePath)
	}

	return tmpDir, paths
}

func assertValidationError(t *testing.T, err error, expectedCause string) {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if expectedCause != "" && validationErr.Cause != expectedCause {
		t.Errorf("expected Cause to be %q, got %q", expectedCause, validationErr.Cause)
	}
}

func TestParseArgs(t *testing.T) {
	t.Run("empty args returns error", func(t *testing.T) {
		result, err := ParseArgs([]string{})
		if result != nil {
			t.Error("expected nil result for empty args")
		}
		assertValidationError(t, err, "no files provided")
	})

	t.Run("regular files", func(t *testing.T) {
		_, paths := setupTestFiles(t, map[string]string{"a.txt": "aaa"})

		result, err := ParseArgs(paths)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 1 {
			t.Fatalf("expected 1 path, got %d", len(result))
		}
		if result[0].Name != "a.txt" || result[0].Size != 3 {
			t.Errorf("unexpected parsed path %+v", result[0])
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseArgs([]string{filepath.Join(t.TempDir(), "ghost.txt")})
		assertValidationError(t, err, "not found or not accessible")
	})

	t.Run("directory is rejected", func(t *testing.T) {
		_, err := ParseArgs([]string{t.TempDir()})
		assertValidationError(t, err, "is a directory")
	})

	t.Run("duplicate basenames", func(t *testing.T) {
		dirA, _ := setupTestFiles(t, map[string]string{"same.txt": "a"})
		dirB, _ := setupTestFiles(t, map[string]string{"same.txt": "b"})

		_, err := ParseArgs([]string{filepath.Join(dirA, "same.txt"), filepath.Join(dirB, "same.txt")})
		assertValidationError(t, err, "")
	})
}
