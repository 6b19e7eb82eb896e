package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// maxAuditPageSize caps ?limit= on the audit log.
const maxAuditPageSize = 200

// handleAuditLog returns recent audit entries, newest first.
//
// Query parameters: action, since (RFC 3339 or YYYY-MM-DD), limit, offset.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := core.AuditLogFilter{
		Action: core.AuditAction(q.Get("action")),
		Limit:  min(parseIntParam(r, "limit", core.DefaultAuditLimit), maxAuditPageSize),
		Offset: parseIntParam(r, "offset", 0),
	}

	if since := q.Get("since"); since != "" {
		t, err := parseSince(since)
		if err != nil {
			s.respondError(w, r, core.AsError("audit_log", core.ValidationError{
				Field:   "since",
				Value:   since,
				Message: "must be RFC 3339 or YYYY-MM-DD",
			}))
			return
		}
		filter.Since = t
	}

	writeJSON(w, http.StatusOK, s.service.AuditEntries(filter))
}

func parseSince(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}
