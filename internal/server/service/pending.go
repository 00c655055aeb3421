package service

import (
	"errors"
	"sync"
	"time"
)

var errDuplicateToken = errors.New("duplicate delete token")

// PendingDelete is a delete request waiting on an admin decision.
type PendingDelete struct {
	Token      string
	Filename   string
	Path       string
	ClientAddr string
	CreatedAt  time.Time
}

// PendingStore is the mutex-guarded token -> PendingDelete map owned by one
// server instance. Entries never expire on their own.
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]PendingDelete
}

func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[string]PendingDelete)}
}

func (s *PendingStore) Add(p PendingDelete) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[p.Token]; exists {
		return errDuplicateToken
	}
	s.entries[p.Token] = p
	return nil
}

func (s *PendingStore) Get(token string) (PendingDelete, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[token]
	return p, ok
}

// Remove deletes the entry for token, if any.
func (s *PendingStore) Remove(token string) (PendingDelete, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	return p, ok
}

// Consume removes and returns the entry for token if it is bound to
// filename. A token can be consumed at most once. On a filename mismatch
// the entry is left in place.
func (s *PendingStore) Consume(token, filename string) (PendingDelete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[token]
	if !ok {
		return PendingDelete{}, ErrInvalidToken
	}
	if p.Filename != filename {
		return PendingDelete{}, ErrFileMismatch
	}
	delete(s.entries, token)
	return p, nil
}

func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
