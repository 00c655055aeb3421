package database

import "time"

// Decision values stored in delete_audit.decision.
const (
	DecisionApproved  = "approved"
	DecisionDenied    = "denied"
	DecisionErrored   = "errored"
	DecisionConfirmed = "confirmed"
)

// DeleteAudit records the outcome of one delete request.
type DeleteAudit struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	Filename    string    `json:"filename"`
	ClientAddr  string    `json:"client_addr"`
	Decision    string    `json:"decision"`
	RequestedAt time.Time `json:"requested_at"`
	DecidedAt   time.Time `json:"decided_at"`
}

// AuditStats holds aggregate delete counters.
type AuditStats struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Denied   int64 `json:"denied"`
}
