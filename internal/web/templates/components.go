// Package templates holds the HTML components of the read-only dashboard.
// The markup lives in components.templ; run `templ generate` after editing it.
package templates

import (
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Datasets []core.Dataset // latest uploads, newest first
	Selected *core.Dataset  // nil when nothing has been uploaded yet
	Rows     []core.RawRow  // first rows of the selected dataset
}

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func shortStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

func reportURL(id string) templ.SafeURL {
	return templ.URL("/api/datasets/" + id + "/generate_pdf/")
}

func fileURL(id string) templ.SafeURL {
	return templ.URL("/api/datasets/" + id + "/file/")
}

func datasetURL(id string) templ.SafeURL {
	return templ.URL("/?id=" + id)
}

func typeLabel(label string) string {
	if label == "" {
		return "(blank)"
	}
	return label
}

// barWidth is the share of total as a CSS width, rounded down.
func barWidth(count, total int) string {
	if total <= 0 {
		return "width:0%"
	}
	return fmt.Sprintf("width:%d%%", count*100/total)
}

// cellText renders a raw cell; missing values stay empty.
func cellText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
