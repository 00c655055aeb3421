package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lanshare/internal/server/database"
	"lanshare/internal/server/storage"
)

// AuditRecorder persists delete decisions. Implemented by
// database.AuditRepository.
type AuditRecorder interface {
	Record(ctx context.Context, a *database.DeleteAudit) error
}

// DeleteService runs the admin-approved delete workflow.
type DeleteService struct {
	store    storage.Store
	pending  *PendingStore
	approver ApprovalSource
	audit    AuditRecorder // nil disables the audit trail
	now      func() time.Time
}

func NewDeleteService(store storage.Store, pending *PendingStore, approver ApprovalSource, audit AuditRecorder) *DeleteService {
	return &DeleteService{
		store:    store,
		pending:  pending,
		approver: approver,
		audit:    audit,
		now:      time.Now,
	}
}

// Pending returns the number of delete requests awaiting a decision.
func (s *DeleteService) Pending() int {
	return s.pending.Len()
}

// Request registers a pending delete for filename and blocks until the
// approver decides. It returns the token on success. Denials and failed
// removals come back as *TokenError so the token can be reported.
//
// Protected and missing files are rejected before any token is issued.
func (s *DeleteService) Request(ctx context.Context, filename, clientAddr string) (string, error) {
	path, _, err := s.store.Lookup(filename)
	if err != nil {
		return "", err
	}

	p := PendingDelete{
		Token:      uuid.NewString(),
		Filename:   filepath.Base(path),
		Path:       path,
		ClientAddr: clientAddr,
		CreatedAt:  s.now(),
	}
	if err := s.pending.Add(p); err != nil {
		return "", fmt.Errorf("failed to register delete request: %w", err)
	}
	defer s.pending.Remove(p.Token)

	slog.Info("delete requested", "filename", p.Filename, "client", clientAddr, "token", p.Token)

	decision, err := s.approver.Approve(ctx, ApprovalRequest{
		Token:       p.Token,
		Filename:    p.Filename,
		ClientAddr:  clientAddr,
		RequestedAt: p.CreatedAt,
	})
	if err != nil {
		slog.Warn("delete approval interrupted", "filename", p.Filename, "token", p.Token, "error", err)
		s.record(ctx, p, database.DecisionErrored)
		return "", fmt.Errorf("%w: %v", ErrApprovalInterrupted, err)
	}
	if decision != Approved {
		slog.Info("delete denied", "filename", p.Filename, "token", p.Token)
		s.record(ctx, p, database.DecisionDenied)
		return "", &TokenError{Token: p.Token, Err: ErrDenied}
	}

	if err := s.store.Delete(p.Path); err != nil {
		slog.Error("delete failed", "filename", p.Filename, "token", p.Token, "error", err)
		s.record(ctx, p, database.DecisionErrored)
		return "", &TokenError{Token: p.Token, Err: fmt.Errorf("%w: %v", ErrDeleteFailed, err)}
	}

	slog.Info("file deleted", "filename", p.Filename, "token", p.Token)
	s.record(ctx, p, database.DecisionApproved)
	return p.Token, nil
}

// Confirm completes a delete that is still pending, for clients that hold
// a token and want to finish the removal themselves. The token is consumed
// on success.
func (s *DeleteService) Confirm(ctx context.Context, filename, token string) error {
	p, err := s.pending.Consume(token, storage.Basename(filename))
	if err != nil {
		return err
	}

	if err := s.store.Delete(p.Path); err != nil {
		slog.Error("delete failed", "filename", p.Filename, "token", token, "error", err)
		s.record(ctx, p, database.DecisionErrored)
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	slog.Info("file deleted by confirmation", "filename", p.Filename, "token", token)
	s.record(ctx, p, database.DecisionConfirmed)
	return nil
}

func (s *DeleteService) record(ctx context.Context, p PendingDelete, decision string) {
	if s.audit == nil {
		return
	}
	// The client may already be gone; the audit row is still wanted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.audit.Record(ctx, &database.DeleteAudit{
		Token:       p.Token,
		Filename:    p.Filename,
		ClientAddr:  p.ClientAddr,
		Decision:    decision,
		RequestedAt: p.CreatedAt,
		DecidedAt:   s.now(),
	})
	if err != nil {
		slog.Warn("failed to record delete audit", "token", p.Token, "error", err)
	}
}
