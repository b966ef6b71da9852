package admin

import (
	"context"
	"fmt"
	"log/slog"
)

// ResetTimeout is the maximum duration for a full reset.
const ResetTimeout = 2 * Timeout

// ResetAll deletes every dataset and its stored file. Users are kept.
// This is a destructive operation - use with caution.
func (a *Admin) ResetAll(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	list, err := a.Datasets.ListDatasets(ctx, 0)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, ds := range list {
		if err := a.Datasets.DeleteDataset(ctx, ds.ID); err != nil {
			return deleted, fmt.Errorf("reset stopped after %d datasets: %w", deleted, err)
		}
		deleted++
	}

	slog.Info("datasets reset", "deleted", deleted)
	return deleted, nil
}
