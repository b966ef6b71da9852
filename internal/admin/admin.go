// Package admin provides the account and dataset maintenance operations
// behind cmd/admin.
package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/parshv1234/ChemicalVisualizer/internal/application"
	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Timeout is the maximum duration for one admin operation.
const Timeout = 30 * time.Second

// Admin runs maintenance operations against the configured backends.
type Admin struct {
	Users    application.UserRepository
	Files    core.FileStore
	Auth     *auth.Service
	Datasets *core.Service
}

// CreateUser adds an account that can obtain API tokens.
func (a *Admin) CreateUser(ctx context.Context, username, password string) (*auth.User, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	return a.Auth.CreateUser(ctx, auth.CreateUserRequest{Username: username, Password: password})
}

// DeleteUser removes an account together with the datasets it uploaded.
// It returns the number of datasets removed.
func (a *Admin) DeleteUser(ctx context.Context, username string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	u, err := a.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("look up %q: %w", username, err)
	}

	keys, err := a.Users.DeleteUser(ctx, u.ID)
	if err != nil {
		return 0, fmt.Errorf("delete user %q: %w", username, err)
	}

	// Records are gone; a leftover file only wastes space.
	for _, key := range keys {
		if err := a.Files.Delete(ctx, key); err != nil {
			slog.Warn("remove file of deleted user", "key", key, "error", err)
		}
	}

	slog.Info("user deleted", "username", username, "datasets", len(keys))
	return len(keys), nil
}

// DeleteDataset removes one dataset and its stored file.
func (a *Admin) DeleteDataset(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	return a.Datasets.DeleteDataset(ctx, id)
}

// ListDatasets writes every dataset as an aligned table, newest first.
func (a *Admin) ListDatasets(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	list, err := a.Datasets.ListDatasets(ctx, 0)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tUPLOADER\tUPLOADED\tCOUNT")
	for _, ds := range list {
		uploader := "-"
		if ds.Uploader != nil {
			uploader = ds.Uploader.Username
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			ds.ID, ds.FileName, uploader, ds.UploadedAt.Format(time.RFC3339), ds.TotalCount)
	}
	return tw.Flush()
}
