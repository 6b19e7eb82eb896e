package web

// handlers_common.go holds request parsing and response helpers shared by
// the handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.AsError("request", core.ValidationError{
			Field:   name,
			Value:   raw,
			Message: "must be a positive integer",
		})
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// dayIDsParam reads the "day" query parameter. It may repeat and may hold
// comma-separated ids. No ids returns nil.
func dayIDsParam(r *http.Request) ([]int64, error) {
	var ids []int64
	for _, v := range r.URL.Query()["day"] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, core.AsError("request", core.ValidationError{
					Field:   "day",
					Value:   part,
					Message: "must be a positive integer",
				})
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// selectedDays returns the requested day ids, or every day when none were
// requested.
func (s *Server) selectedDays(r *http.Request) ([]int64, error) {
	ids, err := dayIDsParam(r)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return ids, nil
	}
	return s.service.AllDayIDs(r.Context())
}

// decodeJSON decodes a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return core.E(core.KindValidation, "request", "request body is empty")
		}
		return core.Errorf(core.KindValidation, "request", "invalid request body: %v", err)
	}
	return nil
}

// writeDownload sends an export as a file attachment.
func writeDownload(w http.ResponseWriter, export core.Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, export.Content)
}
