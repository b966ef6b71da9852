package web

import (
	"errors"
	"net/http"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/logging"
	"github.com/parshv1234/ChemicalVisualizer/internal/web/templates"
)

// dashboardHistory is the number of recent uploads listed on the dashboard.
const dashboardHistory = 5

// handleDashboard renders the read-only dashboard. ?id= selects a dataset;
// otherwise the newest one is shown.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := s.datasets.ListDatasets(ctx, dashboardHistory)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	view := templates.DashboardView{Datasets: list}

	if id := r.URL.Query().Get("id"); id != "" {
		view.Selected, err = s.datasets.GetDataset(ctx, id)
		if err != nil {
			s.respondError(w, r, err, 0)
			return
		}
	} else if len(list) > 0 {
		view.Selected = &list[0]
	}

	if view.Selected != nil {
		view.Rows, err = s.datasets.RawData(ctx, view.Selected.ID, s.cfg.Upload.RawDataLimit)
		if err != nil && !errors.Is(err, core.ErrNotFound) && !core.IsValidation(err) {
			s.respondError(w, r, err, 0)
			return
		}
		if err != nil {
			logging.WithFields(ctx, "dataset_id", view.Selected.ID).Warn("raw rows unavailable", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout("Equipment Dashboard", templates.Dashboard(view)).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render dashboard", "error", err)
	}
}
