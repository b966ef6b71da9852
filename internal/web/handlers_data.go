package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleListDatasets returns datasets newest first, optionally limited by ?limit=.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 0)

	list, err := s.datasets.ListDatasets(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	out := make([]DatasetResponse, 0, len(list))
	for i := range list {
		out = append(out, toDatasetResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetDataset returns one dataset.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.datasets.GetDataset(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// handleRawData returns the first rows of the stored file. ?limit= is capped
// at the configured raw-data limit.
func (s *Server) handleRawData(w http.ResponseWriter, r *http.Request) {
	maxRows := s.cfg.Upload.RawDataLimit
	limit := parseIntParam(r, "limit", maxRows)
	if limit > maxRows {
		limit = maxRows
	}

	rows, err := s.datasets.RawData(r.Context(), chi.URLParam(r, "datasetID"), limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleGeneratePDF renders and downloads the dataset report.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	report, err := s.datasets.Report(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Data)
}

// handleDownloadFile serves the original uploaded CSV.
func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	data, ds, err := s.datasets.OpenFile(r.Context(), chi.URLParam(r, "datasetID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.FileName))
	http.ServeContent(w, r, ds.FileName, ds.UploadedAt, bytes.NewReader(data))
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
