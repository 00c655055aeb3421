package database

import (
	"context"
	"fmt"
)

// AuditRepository persists delete decisions.
type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record inserts one audit row. A zero DecidedAt is stored as NOW().
func (r *AuditRepository) Record(ctx context.Context, a *DeleteAudit) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO delete_audit (
			token, filename, client_addr, decision, requested_at, decided_at
		) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, decided_at
	`,
		a.Token,
		a.Filename,
		a.ClientAddr,
		a.Decision,
		a.RequestedAt,
		nullableTime(a),
	).Scan(&a.ID, &a.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to record delete audit: %w", err)
	}
	return nil
}

// ListByToken returns every row recorded for token, oldest first.
func (r *AuditRepository) ListByToken(ctx context.Context, token string) ([]*DeleteAudit, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, token, filename, client_addr, decision, requested_at, decided_at
		FROM delete_audit WHERE token = $1
		ORDER BY decided_at, id
	`, token)
	if err != nil {
		return nil, fmt.Errorf("failed to query delete audit: %w", err)
	}
	defer rows.Close()

	var audits []*DeleteAudit
	for rows.Next() {
		a := &DeleteAudit{}
		if err := rows.Scan(
			&a.ID,
			&a.Token,
			&a.Filename,
			&a.ClientAddr,
			&a.Decision,
			&a.RequestedAt,
			&a.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan delete audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// GetStats returns aggregate delete counters.
func (r *AuditRepository) GetStats(ctx context.Context) (*AuditStats, error) {
	stats := &AuditStats{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE decision IN ('approved', 'confirmed')),
			COUNT(*) FILTER (WHERE decision = 'denied')
		FROM delete_audit
	`).Scan(&stats.Total, &stats.Approved, &stats.Denied)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit stats: %w", err)
	}
	return stats, nil
}

func nullableTime(a *DeleteAudit) any {
	if a.DecidedAt.IsZero() {
		return nil
	}
	return a.DecidedAt
}
