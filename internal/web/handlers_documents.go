package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/liftlog/internal/core"
	"github.com/JonMunkholm/liftlog/internal/logging"
)

// multipartOverhead is the slack allowed for multipart framing on top of
// the document size limit.
const multipartOverhead = 64 << 10

// handleExport downloads the program as a sectioned document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.service.ExportDocument(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeDownload(w, export)
}

// handleExportPretty downloads the program as a flat, human-readable sheet.
func (s *Server) handleExportPretty(w http.ResponseWriter, r *http.Request) {
	export, err := s.service.ExportPrettyPrint(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeDownload(w, export)
}

// handleImport replaces the program with an uploaded document. The document
// is either the "file" part of a multipart form or the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := s.documentBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer closeBody()

	res, err := s.service.ImportReader(r.Context(), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "import_id", res.ImportID).
		Info("import request completed", "rows", res.Counts.Total(), "format", string(res.Format))
	writeJSON(w, http.StatusOK, res)
}

// DetectResponse is the result of classifying a document.
type DetectResponse struct {
	Format     core.Format `json:"format"`
	Supported  bool        `json:"supported"`
	Diagnostic string      `json:"diagnostic"`
}

// handleDetect classifies an uploaded document without importing it.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	body, closeBody, err := s.documentBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer closeBody()

	doc, err := core.ReadDocument(body, s.cfg.Import.MaxDocumentSize)
	if err != nil {
		s.respondError(w, r, core.Wrap(core.KindValidation, "detect.read", err))
		return
	}

	format, diagnostic := s.service.DetectDocument(doc)
	writeJSON(w, http.StatusOK, DetectResponse{
		Format:     format,
		Supported:  format.Supported(),
		Diagnostic: diagnostic,
	})
}

// documentBody returns a reader over the uploaded document.
func (s *Server) documentBody(w http.ResponseWriter, r *http.Request) (io.Reader, func(), error) {
	maxSize := s.cfg.Import.MaxDocumentSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, nil, core.Wrap(core.KindValidation, "import.form", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, core.E(core.KindValidation, "import.form", "no file provided")
	}
	return file, func() { file.Close() }, nil
}
