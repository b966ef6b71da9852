package admin

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
	"github.com/parshv1234/ChemicalVisualizer/internal/filestore"
	"github.com/parshv1234/ChemicalVisualizer/internal/report"
	"github.com/parshv1234/ChemicalVisualizer/internal/store/memory"
)

const sampleCSV = "Equipment Name,Type,Flowrate,Pressure,Temperature\n" +
	"Pump-1,Pump,120,5.2,110\n" +
	"Valve-1,Valve,60,4.1,105\n"

func newTestAdmin(t *testing.T) (*Admin, *filestore.Local) {
	t.Helper()

	store := memory.New()
	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer([]byte(strings.Repeat("k", 32)), "test", time.Hour)
	return &Admin{
		Users:    store,
		Files:    files,
		Auth:     auth.NewService(store, auth.NewHasher(4), tokens),
		Datasets: core.NewService(store, files, report.NewRenderer()),
	}, files
}

func upload(t *testing.T, a *Admin, u *auth.User, name string) *core.Dataset {
	t.Helper()

	ctx := context.Background()
	if u != nil {
		ctx = core.ContextWithIdentity(ctx, &core.Identity{ID: u.ID, Username: u.Username})
	}
	ds, err := a.Datasets.CreateDataset(ctx, name, []byte(sampleCSV))
	require.NoError(t, err)
	return ds
}

func TestAdmin_CreateUser(t *testing.T) {
	a, _ := newTestAdmin(t)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, "operator", "long-enough-password")
	require.NoError(t, err)
	assert.Equal(t, "operator", u.Username)

	_, err = a.CreateUser(ctx, "operator", "another-password")
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)

	_, err = a.CreateUser(ctx, "x", "short")
	var reqErr *auth.RequestError
	assert.ErrorAs(t, err, &reqErr)
}

func TestAdmin_DeleteUserRemovesFiles(t *testing.T) {
	a, files := newTestAdmin(t)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, "operator", "long-enough-password")
	require.NoError(t, err)
	owned := upload(t, a, u, "owned.csv")
	anon := upload(t, a, nil, "anon.csv")

	n, err := a.DeleteUser(ctx, "operator")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = files.Get(ctx, owned.FileKey)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = a.Datasets.GetDataset(ctx, anon.ID)
	assert.NoError(t, err)

	_, err = a.DeleteUser(ctx, "operator")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestAdmin_DeleteDataset(t *testing.T) {
	a, _ := newTestAdmin(t)
	ctx := context.Background()

	ds := upload(t, a, nil, "plant.csv")
	require.NoError(t, a.DeleteDataset(ctx, ds.ID))
	assert.ErrorIs(t, a.DeleteDataset(ctx, ds.ID), core.ErrNotFound)
}

func TestAdmin_ListDatasets(t *testing.T) {
	a, _ := newTestAdmin(t)
	ctx := context.Background()

	u, err := a.CreateUser(ctx, "operator", "long-enough-password")
	require.NoError(t, err)
	first := upload(t, a, nil, "first.csv")
	second := upload(t, a, u, "second.csv")

	var buf bytes.Buffer
	require.NoError(t, a.ListDatasets(ctx, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], second.ID)
	assert.Contains(t, lines[1], "operator")
	assert.Contains(t, lines[2], first.ID)
	assert.Contains(t, lines[2], " - ")
}

func TestAdmin_ResetAll(t *testing.T) {
	a, _ := newTestAdmin(t)
	ctx := context.Background()

	upload(t, a, nil, "a.csv")
	upload(t, a, nil, "b.csv")

	n, err := a.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := a.Datasets.ListDatasets(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
