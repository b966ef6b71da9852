package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/parshv1234/ChemicalVisualizer/internal/logging"
)

// multipartOverhead is allowed on top of the file size for form boundaries and headers.
const multipartOverhead = 64 << 10

// handleUpload accepts a multipart CSV upload in the "file" field and creates a dataset.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var mbErr *http.MaxBytesError
		if errors.As(err, &mbErr) {
			s.respondError(w, r, err, 0)
			return
		}
		s.respondError(w, r, errInvalidForm, 0)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile, 0)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		s.respondError(w, r, &http.MaxBytesError{Limit: maxSize}, 0)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	ds, err := s.datasets.CreateDataset(ctx, header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	logging.WithFields(ctx, "dataset_id", ds.ID).Info("upload accepted",
		"file", header.Filename,
		"bytes", len(data),
	)
	w.Header().Set("Location", "/api/datasets/"+ds.ID+"/")
	writeJSON(w, http.StatusCreated, toDatasetResponse(ds))
}
