package web

import (
	"net/http"

	"github.com/JonMunkholm/liftlog/internal/web/templates"
)

// handleSummaryPage renders the summary page. ?day= narrows the aggregate
// and the group breakdown; without it they cover every day.
func (s *Server) handleSummaryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := s.selectedDays(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	days, err := s.service.DaySummaries(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	agg, err := s.service.Aggregate(ctx, ids)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	groups, err := s.service.GroupBreakdown(ctx, ids)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := templates.SummaryPageParams{Days: days, Aggregate: agg, Groups: groups}
	if err := templates.SummaryPage(params).Render(ctx, w); err != nil {
		s.respondError(w, r, err)
	}
}
