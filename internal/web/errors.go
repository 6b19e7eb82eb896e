package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The error kind picks the status code; core.MapError picks the message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API routes, HTML otherwise

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code, Kind) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error    string         `json:"error"`
	Message  string         `json:"message"`
	Action   string         `json:"action,omitempty"`
	Code     string         `json:"code"`
	Kind     string         `json:"kind,omitempty"`
	Problems []core.Problem `json:"problems,omitempty"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || errors.Is(err, core.ErrDocumentTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch core.KindOf(err) {
	case core.KindValidation, core.KindParse:
		return http.StatusBadRequest
	case core.KindFormatUnsupported:
		return http.StatusUnsupportedMediaType
	case core.KindIntegrity:
		return http.StatusUnprocessableEntity
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns JSON or HTML
// depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		respondErrorJSON(w, err, userMsg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// respondErrorJSON writes a JSON error response. Internal errors are not
// echoed to the client.
func respondErrorJSON(w http.ResponseWriter, err error, msg core.UserMessage, status int) {
	resp := ErrorResponse{
		Error:    msg.Message,
		Message:  msg.Message,
		Action:   msg.Action,
		Code:     msg.Code,
		Kind:     core.KindOf(err).String(),
		Problems: core.ProblemsOf(err),
	}
	if status < http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
