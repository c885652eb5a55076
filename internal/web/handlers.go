package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/salesimport/internal/core"
	"github.com/JonMunkholm/salesimport/internal/logging"
)

// multipartMemory is how much of a form is buffered in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// handleImport runs a worksheet upload through the engine and stores the
// result for later retrieval. Batch-level failures are still returned as an
// ImportResult, with status 422.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseImportKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	importID := uuid.NewString()
	logger := logging.ForImport(r.Context(), importID, name)
	logger.Info("import requested", "kind", kind, "bytes", len(data))

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	var res *core.ImportResult
	err = s.limiter.Run(ctx, func() {
		res = s.service.Import(ctx, core.ImportRequest{
			ImportID: importID,
			FileName: name,
			Data:     data,
			Kind:     kind,
		})
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// The request context may be done by now; history must still be written.
	if err := s.history.Save(context.WithoutCancel(r.Context()), res); err != nil {
		logger.Warn("failed to save import result", "error", err)
	} else {
		w.Header().Set("Location", "/api/imports/"+importID)
	}

	status := http.StatusOK
	if batchFailed(res) {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// batchFailed reports whether the import stopped before reaching any row.
func batchFailed(res *core.ImportResult) bool {
	return !res.Success && res.TotalRows == 0 && len(res.Errors) > 0 && res.Errors[0].Row == 0
}

// handlePreview reports how a worksheet would be read without importing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseImportKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.Preview(core.ImportRequest{FileName: name, Data: data, Kind: kind})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleTemplate serves a blank import template with one example row.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	mode, err := core.ParseTemplateMode(chi.URLParam(r, "mode"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	format, err := core.ParseTemplateFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := s.service.Template(mode, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == core.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", mode.FileName(format)))
	w.Write(data)
}

// handleImportResult returns a stored ImportResult as JSON.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.history.Get(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleImportPage renders a stored ImportResult as HTML.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.history.Get(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ImportSummaryPage(res).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render import page", "error", err)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string             `json:"status"`
	Database string             `json:"database,omitempty"`
	TaxRate  string             `json:"tax_rate"`
	Imports  core.LimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		TaxRate: s.service.TaxRate(),
		Imports: s.limiter.Status(),
	}
	status := http.StatusOK
	if s.ping != nil {
		resp.Database = "ok"
		if err := s.ping(r.Context()); err != nil {
			logging.FromContext(r.Context()).Warn("health check: database ping failed", "error", err)
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// readUpload reads the "file" form field, bounded by IMPORT_MAX_FILE_SIZE.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", errFileTooBig, maxSize)
		}
		return "", nil, fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, fmt.Errorf("%w: limit is %d bytes", errFileTooBig, maxSize)
		}
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}
