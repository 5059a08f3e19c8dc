package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"cardtrack/internal/core"
)

// handleUpload ingests one statement file sent as multipart form data
// with a "file" part and a "dolar_rate" field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, ownerID int64) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMaxBytes)
	if err := r.ParseMultipartForm(s.uploadMaxBytes); err != nil {
		writeError(w, r, &core.ValidationError{Field: "file", Message: "invalid or oversized multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "file", Message: "file part is required"})
		return
	}
	defer file.Close()

	rate, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("dolar_rate")), 64)
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "dolar_rate", Message: "dolar_rate must be a number"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := filepath.Base(header.Filename)
	result, err := s.svcs.Ingest.Ingest(r.Context(), ownerID, filename, header.Header.Get("Content-Type"), data, rate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
