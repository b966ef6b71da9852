package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/client"
	"github.com/parshv1234/ChemicalVisualizer/internal/config"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/filestore"
	"github.com/parshv1234/ChemicalVisualizer/internal/report"
	"github.com/parshv1234/ChemicalVisualizer/internal/store/memory"
	"github.com/parshv1234/ChemicalVisualizer/internal/web"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()

	cfg := &config.Config{
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, RawDataLimit: 50, Timeout: time.Minute},
		Security: config.SecurityConfig{
			TokenSecret: strings.Repeat("k", 32),
			TokenTTL:    time.Hour,
			TokenIssuer: "test",
		},
	}

	store := memory.New()
	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer([]byte(cfg.Security.TokenSecret), cfg.Security.TokenIssuer, cfg.Security.TokenTTL)
	authSvc := auth.NewService(store, auth.NewHasher(4), tokens)
	_, err = authSvc.CreateUser(context.Background(), auth.CreateUserRequest{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	ts := httptest.NewServer(web.NewServer(cfg, core.NewService(store, files, report.NewRenderer()), authSvc).Router())
	t.Cleanup(ts.Close)
	return client.New(ts.URL)
}

func TestRun_Session(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	dir := t.TempDir()

	var out bytes.Buffer
	require.NoError(t, run(ctx, c, &out, "login", []string{"alice", "correct-horse"}))
	c.SetToken(strings.TrimSpace(out.String()))

	csvPath := filepath.Join(dir, "plant.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Equipment Name,Type,Flowrate,Pressure,Temperature\nP1,Pump,2,3,10\nP2,Pump,4,3,20\nV1,Valve,6,3,30\n"), 0o644))

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "upload", []string{csvPath}))
	assert.Contains(t, out.String(), "plant.csv")
	assert.Contains(t, out.String(), "4.00")
	assert.Less(t, strings.Index(out.String(), "Pump"), strings.Index(out.String(), "Valve"))

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "history", nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[1])[0]

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "raw", []string{id, "-n", "2"}))
	lines = strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Equipment Name"))

	pdfPath := filepath.Join(dir, "out.pdf")
	out.Reset()
	require.NoError(t, run(ctx, c, &out, "pdf", []string{id, "-o", pdfPath}))
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRun_Errors(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	var out bytes.Buffer

	assert.ErrorContains(t, run(ctx, c, &out, "show", nil), "expected 1 argument")
	assert.ErrorContains(t, run(ctx, c, &out, "frobnicate", nil), `unknown command "frobnicate"`)

	err := run(ctx, c, &out, "show", []string{"00000000-0000-0000-0000-000000000000"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "history", nil))
	assert.Equal(t, "no datasets uploaded yet\n", out.String())
}
