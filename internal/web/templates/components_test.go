package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

func TestDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Dashboard(DashboardView{}).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No datasets uploaded yet") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDashboard_EscapesAndShowsSummary(t *testing.T) {
	ds := core.Dataset{
		ID:         "6f1c2a4e-3b7d-4c1e-9a2f-1b2c3d4e5f60",
		FileName:   "<script>.csv",
		UploadedAt: time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Uploader:   &core.Identity{ID: "u1", Username: "alice"},
		Stats: core.Stats{
			TotalCount:       3,
			AvgFlowrate:      5,
			AvgPressure:      4,
			AvgTemperature:   17.5,
			TypeDistribution: core.TypeDistribution{"Pump": 2, "": 1},
		},
	}
	rows := []core.RawRow{{Columns: []string{"Equipment Name", "Flowrate"}, Values: []any{"P&1", nil}}}

	var buf bytes.Buffer
	err := Layout("Dashboard", Dashboard(DashboardView{
		Datasets: []core.Dataset{ds},
		Selected: &ds,
		Rows:     rows,
	})).Render(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!doctype html>",
		"&lt;script&gt;.csv",
		"by alice",
		"17.50",
		`style="width:66%;"`,
		"(blank)",
		"P&amp;1",
		"/api/datasets/6f1c2a4e-3b7d-4c1e-9a2f-1b2c3d4e5f60/generate_pdf/",
		`class="selected"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("file name was not escaped")
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	msg := core.UserMessage{Message: "Dataset not found", Action: "Refresh", Code: "DS001"}
	if err := ErrorPage(msg).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Code: DS001") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDashboard_EscapesAttributes(t *testing.T) {
	ds := core.Dataset{
		ID:         `x" onmouseover="alert(1)`,
		FileName:   "a.csv",
		UploadedAt: time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Stats: core.Stats{
			TotalCount:       1,
			TypeDistribution: core.TypeDistribution{"Pump": 1},
		},
	}

	var buf bytes.Buffer
	err := Dashboard(DashboardView{Datasets: []core.Dataset{ds}, Selected: &ds}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Contains(out, `" onmouseover="`) {
		t.Errorf("dataset id broke out of the href attribute: %q", out)
	}
	if !strings.Contains(out, `href="/?id=x&#34; onmouseover=&#34;alert(1)"`) {
		t.Errorf("history link not escaped: %q", out)
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		count, total int
		want         string
	}{
		{2, 3, "width:66%"},
		{3, 3, "width:100%"},
		{0, 0, "width:0%"},
	}
	for _, tt := range tests {
		if got := barWidth(tt.count, tt.total); got != tt.want {
			t.Errorf("barWidth(%d, %d) = %q, want %q", tt.count, tt.total, got, tt.want)
		}
	}
}
