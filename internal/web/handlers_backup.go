package web

import (
	"net/http"
)

type restoreRequest struct {
	Key string `json:"key"`
}

// handleBackup stores the current program in object storage.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	obj, err := s.service.Backup(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

// handleListBackups lists stored backups, newest first.
func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	objects, err := s.service.ListBackups(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objects)
}

// handleRestore replaces the program with a stored backup.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.service.Restore(r.Context(), req.Key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
