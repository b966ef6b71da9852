package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/web/middleware"
)

// Authenticator is the part of auth.Service the server needs.
type Authenticator interface {
	middleware.Authenticator
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Token, error)
}

// DatasetResponse is the API representation of a dataset.
type DatasetResponse struct {
	ID               string                `json:"id"`
	Uploader         *string               `json:"uploader"`
	UploaderUsername *string               `json:"uploader_username"`
	File             string                `json:"file"`
	FileName         string                `json:"file_name"`
	UploadedAt       time.Time             `json:"uploaded_at"`
	TotalCount       int                   `json:"total_count"`
	AvgFlowrate      float64               `json:"avg_flowrate"`
	AvgPressure      float64               `json:"avg_pressure"`
	AvgTemperature   float64               `json:"avg_temperature"`
	TypeDistribution core.TypeDistribution `json:"type_distribution"`
}

func toDatasetResponse(ds *core.Dataset) DatasetResponse {
	resp := DatasetResponse{
		ID:               ds.ID,
		File:             "/api/datasets/" + ds.ID + "/file/",
		FileName:         ds.FileName,
		UploadedAt:       ds.UploadedAt.UTC(),
		TotalCount:       ds.TotalCount,
		AvgFlowrate:      ds.AvgFlowrate,
		AvgPressure:      ds.AvgPressure,
		AvgTemperature:   ds.AvgTemperature,
		TypeDistribution: ds.TypeDistribution,
	}
	if resp.TypeDistribution == nil {
		resp.TypeDistribution = core.TypeDistribution{}
	}
	if ds.Uploader != nil {
		id, name := ds.Uploader.ID, ds.Uploader.Username
		resp.Uploader = &id
		resp.UploaderUsername = &name
	}
	return resp
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
