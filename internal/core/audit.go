package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionImport         AuditAction = "import"
	ActionImportRollback AuditAction = "import_rollback"
	ActionExport         AuditAction = "export"
	ActionPrettyExport   AuditAction = "pretty_export"
	ActionEdit           AuditAction = "edit"
	ActionProgramReset   AuditAction = "program_reset"
	ActionBackup         AuditAction = "backup"
	ActionRestore        AuditAction = "restore"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// DefaultAuditCapacity is how many entries the trail keeps.
const DefaultAuditCapacity = 500

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string        `json:"id"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	Target       string        `json:"target,omitempty"`
	Channel      string        `json:"channel,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	RowsAffected int           `json:"rowsAffected,omitempty"`
	ImportID     string        `json:"importId,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action       AuditAction
	Target       string // What was touched, e.g. "day 3" or a backup key
	RowsAffected int
	ImportID     string
	Reason       string
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionImportRollback, ActionProgramReset:
		return SeverityCritical
	case ActionBackup, ActionRestore:
		return SeverityHigh
	case ActionExport, ActionPrettyExport:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// AuditTrail keeps the most recent audit entries in memory.
type AuditTrail struct {
	mu      sync.RWMutex
	entries []AuditEntry // Ring buffer
	next    int
	full    bool
	now     func() time.Time
}

// NewAuditTrail creates a trail holding at most capacity entries.
func NewAuditTrail(capacity int) *AuditTrail {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditTrail{
		entries: make([]AuditEntry, capacity),
		now:     time.Now,
	}
}

// Record appends an entry attributed to the Caller in ctx, if any.
func (a *AuditTrail) Record(ctx context.Context, params AuditLogParams) AuditEntry {
	caller := CallerFrom(ctx)
	entry := AuditEntry{
		ID:           uuid.NewString(),
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		Target:       params.Target,
		Channel:      caller.Channel,
		IPAddress:    caller.Address,
		UserAgent:    caller.Agent,
		RowsAffected: params.RowsAffected,
		ImportID:     params.ImportID,
		Reason:       params.Reason,
	}

	a.mu.Lock()
	entry.CreatedAt = a.now()
	a.entries[a.next] = entry
	a.next = (a.next + 1) % len(a.entries)
	if a.next == 0 {
		a.full = true
	}
	a.mu.Unlock()

	return entry
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	Action AuditAction
	Since  time.Time
	Limit  int
	Offset int
}

// DefaultAuditLimit is the page size when a filter sets none.
const DefaultAuditLimit = 50

// Entries returns matching entries, newest first.
func (a *AuditTrail) Entries(filter AuditLogFilter) []AuditEntry {
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	n := a.next
	if a.full {
		n = len(a.entries)
	}

	out := make([]AuditEntry, 0, min(n, filter.Limit))
	skipped := 0
	for i := 0; i < n && len(out) < filter.Limit; i++ {
		idx := (a.next - 1 - i + len(a.entries)) % len(a.entries)
		e := a.entries[idx]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out
}
