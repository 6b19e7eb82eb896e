package web

import (
	"net/http"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// StatusResponse reports what the server is doing.
type StatusResponse struct {
	Lease          core.ImportLeaseStatus `json:"lease"`
	BackupsEnabled bool                   `json:"backupsEnabled"`
	Counts         core.ImportCounts      `json:"counts"`
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleStatus reports the import lease, backup availability and row counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.Program(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Lease:          s.service.LeaseStatus(),
		BackupsEnabled: s.service.BackupsEnabled(),
		Counts:         p.Counts(),
	})
}

// handleProgram returns every entity of the program.
func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.Program(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDaySummaries summarizes every day in day order.
func (s *Server) handleDaySummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.service.DaySummaries(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleDaySummary summarizes one day.
func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dayID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	summary, err := s.service.DaySummary(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleAggregate computes statistics across ?day= ids, or all days.
func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	ids, err := s.selectedDays(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	agg, err := s.service.Aggregate(r.Context(), ids)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// handleGroupBreakdown lists the exercises of ?day= ids, or all days, by
// workout group.
func (s *Server) handleGroupBreakdown(w http.ResponseWriter, r *http.Request) {
	ids, err := s.selectedDays(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	groups, err := s.service.GroupBreakdown(r.Context(), ids)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
