package storage

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidName = errors.New("invalid filename")
	ErrProtected   = errors.New("file is protected")
)

// ProtectedSet is an immutable set of basenames that are never listed,
// served, overwritten or deleted.
type ProtectedSet struct {
	names map[string]struct{}
}

func NewProtectedSet(names ...string) ProtectedSet {
	set := ProtectedSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			set.names[n] = struct{}{}
		}
	}
	return set
}

// Contains is a case-sensitive exact match on the basename.
func (p ProtectedSet) Contains(name string) bool {
	_, ok := p.names[name]
	return ok
}

func (p ProtectedSet) Len() int {
	return len(p.names)
}

// Sanitizer maps client-supplied names onto paths directly under root.
type Sanitizer struct {
	root      string
	protected ProtectedSet
}

func NewSanitizer(root string, protected ProtectedSet) *Sanitizer {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Sanitizer{root: filepath.Clean(root), protected: protected}
}

// Basename drops every directory component, treating both '/' and '\' as
// separators, so "a/../b" becomes "b".
func Basename(raw string) string {
	if i := strings.LastIndexAny(raw, `/\`); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

func (s *Sanitizer) IsProtected(name string) bool {
	return s.protected.Contains(Basename(name))
}

// Resolve returns the on-disk path for raw. Symlinks are not resolved.
// Names carrying the upload temp prefix are reserved for in-flight writes.
func (s *Sanitizer) Resolve(raw string) (string, error) {
	name := Basename(raw)
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	if strings.HasPrefix(name, TempPrefix) {
		return "", ErrInvalidName
	}
	if s.protected.Contains(name) {
		return "", ErrProtected
	}
	return filepath.Join(s.root, name), nil
}

func (s *Sanitizer) Root() string {
	return s.root
}
