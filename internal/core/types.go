// Package core provides the business logic for equipment dataset uploads.
// This package has no transport dependencies and can be used by any frontend.
package core

import (
	"context"
	"sort"
	"time"
)

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name     string    // Column header name (must match CSV exactly, case-sensitive)
	Type     FieldType // Expected data type
	Required bool      // Column must exist in CSV header
}

// Column names of the equipment inventory CSV.
const (
	ColEquipmentName = "Equipment Name"
	ColType          = "Type"
	ColFlowrate      = "Flowrate"
	ColPressure      = "Pressure"
	ColTemperature   = "Temperature"
)

// EquipmentFieldSpecs defines the columns every uploaded inventory must carry.
var EquipmentFieldSpecs = []FieldSpec{
	{Name: ColEquipmentName, Type: FieldText, Required: true},
	{Name: ColType, Type: FieldText, Required: true},
	{Name: ColFlowrate, Type: FieldNumeric, Required: true},
	{Name: ColPressure, Type: FieldNumeric, Required: true},
	{Name: ColTemperature, Type: FieldNumeric, Required: true},
}

// RequiredColumns returns the names of all required columns in declaration order.
func RequiredColumns() []string {
	cols := make([]string, 0, len(EquipmentFieldSpecs))
	for _, spec := range EquipmentFieldSpecs {
		if spec.Required {
			cols = append(cols, spec.Name)
		}
	}
	return cols
}

// Identity is an authenticated requester.
type Identity struct {
	ID       string
	Username string
}

// TypeDistribution maps an equipment type label to its occurrence count.
type TypeDistribution map[string]int

// TypeCount is one entry of a TypeDistribution.
type TypeCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Total returns the sum of all counts.
func (d TypeDistribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Sorted returns the entries ordered by count descending, then label ascending.
func (d TypeDistribution) Sorted() []TypeCount {
	out := make([]TypeCount, 0, len(d))
	for label, n := range d {
		out = append(out, TypeCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Stats holds the fields derived from an uploaded file.
type Stats struct {
	TotalCount       int
	AvgFlowrate      float64
	AvgPressure      float64
	AvgTemperature   float64
	TypeDistribution TypeDistribution
}

// Dataset is one uploaded CSV plus its derived statistics.
type Dataset struct {
	ID         string
	Uploader   *Identity // nil for anonymous uploads
	FileKey    string
	FileName   string
	UploadedAt time.Time
	Stats
}

// NewDataset contains everything a Repository needs to create a Dataset.
// The repository assigns ID and UploadedAt.
type NewDataset struct {
	UploaderID string // empty for anonymous uploads
	FileKey    string
	FileName   string
	Stats      Stats
}

// Repository persists datasets.
// Get and Delete return ErrNotFound for unknown identifiers.
type Repository interface {
	Create(ctx context.Context, nd NewDataset) (*Dataset, error)
	Get(ctx context.Context, id string) (*Dataset, error)
	List(ctx context.Context) ([]Dataset, error)
	Delete(ctx context.Context, id string) error
}

// FileStore holds the original uploaded bytes.
// Get returns ErrNotFound when no object exists for key.
type FileStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
