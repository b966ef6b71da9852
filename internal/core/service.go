package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadTimeout is the maximum duration for storing an upload.
var UploadTimeout = 2 * time.Minute

// UploadPrefix is the file store prefix for original CSV files.
const UploadPrefix = "uploads/"

// ReportRenderer writes a printable summary of a dataset.
type ReportRenderer interface {
	Render(w io.Writer, ds *Dataset) error
	Filename(datasetID string) string
}

// Report is a rendered document ready to be sent to a client.
type Report struct {
	Filename string
	Data     []byte
}

// Service provides the dataset operations shared by the HTTP API and the admin tools.
type Service struct {
	repo     Repository
	files    FileStore
	renderer ReportRenderer
}

// NewService creates a new Service instance.
func NewService(repo Repository, files FileStore, renderer ReportRenderer) *Service {
	return &Service{
		repo:     repo,
		files:    files,
		renderer: renderer,
	}
}

// CreateDataset validates and summarizes an uploaded CSV, stores the original
// bytes and records the dataset. The uploader is taken from ctx.
//
// Nothing is persisted when the file is rejected. If the record cannot be
// written the stored file is removed again.
func (s *Service) CreateDataset(ctx context.Context, fileName string, data []byte) (*Dataset, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Kind: KindEmptyUpload, Message: "empty file: the submitted file is empty"}
	}

	_, stats, err := SummarizeCSV(data)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := NewFileKey(fileName)
	if err := s.files.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	nd := NewDataset{
		FileKey:  key,
		FileName: fileName,
		Stats:    stats,
	}
	if id := IdentityFromContext(ctx); id != nil {
		nd.UploaderID = id.ID
	}

	ds, err := s.repo.Create(ctx, nd)
	if err != nil {
		if delErr := s.files.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			slog.Error("remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	slog.Info("dataset created",
		"id", ds.ID,
		"file", fileName,
		"total_count", ds.TotalCount,
		"ip", GetIPAddressFromContext(ctx),
	)

	return ds, nil
}

// GetDataset returns one dataset. Unknown or malformed identifiers yield ErrNotFound.
func (s *Service) GetDataset(ctx context.Context, id string) (*Dataset, error) {
	canonical, ok := canonicalID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, canonical)
}

// ListDatasets returns datasets newest first. A non-positive limit returns all of them.
func (s *Service) ListDatasets(ctx context.Context, limit int) ([]Dataset, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// RawData re-reads the stored file of a dataset and returns its first rows.
func (s *Service) RawData(ctx context.Context, id string, limit int) ([]RawRow, error) {
	data, _, err := s.OpenFile(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", id, err)
	}

	return ProjectRaw(t, limit), nil
}

// Report renders the summary document of a dataset.
func (s *Service) Report(ctx context.Context, id string) (*Report, error) {
	ds, err := s.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, ds); err != nil {
		var rerr *RenderError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &RenderError{DatasetID: ds.ID, Reason: "write document", Err: err}
	}

	return &Report{
		Filename: s.renderer.Filename(ds.ID),
		Data:     buf.Bytes(),
	}, nil
}

// OpenFile returns the original uploaded bytes of a dataset.
func (s *Service) OpenFile(ctx context.Context, id string) ([]byte, *Dataset, error) {
	ds, err := s.GetDataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.files.Get(ctx, ds.FileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open file of dataset %s: %w", id, err)
	}
	return data, ds, nil
}

// DeleteDataset removes a dataset record and its stored file.
// A file that is already gone does not fail the delete.
func (s *Service) DeleteDataset(ctx context.Context, id string) error {
	ds, err := s.GetDataset(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, ds.ID); err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}

	if err := s.files.Delete(ctx, ds.FileKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete file of dataset %s: %w", id, err)
	}

	slog.Info("dataset deleted", "id", ds.ID, "file", ds.FileName)
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewFileKey returns a unique file store key for an uploaded file name.
func NewFileKey(fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload.csv"
	}
	return UploadPrefix + uuid.New().String() + "_" + name
}

// canonicalID normalizes a dataset identifier to the lowercase hyphenated UUID form.
func canonicalID(id string) (string, bool) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return uid.String(), true
}
