package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parshv1234/ChemicalVisualizer/internal/auth"
	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Postgres error codes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Store implements core.Repository and auth.UserStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	q    *Queries
}

// NewStore wraps pool. The schema is created by the migrations in internal/db.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: New(pool)}
}

func (s *Store) Create(ctx context.Context, nd core.NewDataset) (*core.Dataset, error) {
	dist, err := json.Marshal(distributionOrEmpty(nd.Stats.TypeDistribution))
	if err != nil {
		return nil, fmt.Errorf("encode type distribution: %w", err)
	}

	var uploader pgtype.UUID
	if nd.UploaderID != "" {
		if uploader, err = toPgUUID(nd.UploaderID); err != nil {
			return nil, auth.ErrUserNotFound
		}
	}

	id := uuid.New()
	err = s.q.InsertDataset(ctx, InsertDatasetParams{
		ID:               pgtype.UUID{Bytes: id, Valid: true},
		UploaderID:       uploader,
		FileKey:          nd.FileKey,
		FileName:         nd.FileName,
		TotalCount:       int32(nd.Stats.TotalCount),
		AvgFlowrate:      nd.Stats.AvgFlowrate,
		AvgPressure:      nd.Stats.AvgPressure,
		AvgTemperature:   nd.Stats.AvgTemperature,
		TypeDistribution: dist,
	})
	if err != nil {
		if pgErrorCode(err) == codeForeignKeyViolation {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert dataset: %w", err)
	}

	// Re-read so uploaded_at and the uploader name come from the database.
	return s.Get(ctx, id.String())
}

func (s *Store) Get(ctx context.Context, id string) (*core.Dataset, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, core.ErrNotFound
	}

	row, err := s.q.GetDataset(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get dataset %s: %w", id, err)
	}
	return row.toDataset()
}

func (s *Store) List(ctx context.Context) ([]core.Dataset, error) {
	rows, err := s.q.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	out := make([]core.Dataset, 0, len(rows))
	for _, row := range rows {
		ds, err := row.toDataset()
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	pgID, err := toPgUUID(id)
	if err != nil {
		return core.ErrNotFound
	}

	n, err := s.q.DeleteDataset(ctx, pgID)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*auth.User, error) {
	id := uuid.New()
	createdAt, err := s.q.InsertUser(ctx, pgtype.UUID{Bytes: id, Valid: true}, username, passwordHash)
	if err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			return nil, auth.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &auth.User{
		ID:           id.String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.Time,
	}, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	row, err := s.q.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}

	row, err := s.q.GetUserByID(ctx, pgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}

// DeleteUser removes a user. Their datasets go with them through ON DELETE CASCADE;
// the returned keys name the stored files the caller should remove.
func (s *Store) DeleteUser(ctx context.Context, id string) ([]string, error) {
	pgID, err := toPgUUID(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	q := s.q.WithTx(tx)

	keys, err := q.DatasetKeysByUploader(ctx, pgID)
	if err != nil {
		return nil, fmt.Errorf("list user datasets: %w", err)
	}

	n, err := q.DeleteUser(ctx, pgID)
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return nil, auth.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return keys, nil
}

func (r DatasetRow) toDataset() (*core.Dataset, error) {
	dist := core.TypeDistribution{}
	if len(r.TypeDistribution) > 0 {
		if err := json.Unmarshal(r.TypeDistribution, &dist); err != nil {
			return nil, fmt.Errorf("decode type distribution: %w", err)
		}
	}

	ds := &core.Dataset{
		ID:         fromPgUUID(r.ID),
		FileKey:    r.FileKey,
		FileName:   r.FileName,
		UploadedAt: r.UploadedAt.Time.UTC(),
		Stats: core.Stats{
			TotalCount:       int(r.TotalCount),
			AvgFlowrate:      r.AvgFlowrate,
			AvgPressure:      r.AvgPressure,
			AvgTemperature:   r.AvgTemperature,
			TypeDistribution: dist,
		},
	}
	if r.UploaderID.Valid {
		ds.Uploader = &core.Identity{ID: fromPgUUID(r.UploaderID), Username: r.Username.String}
	}
	return ds, nil
}

func (r UserRow) toUser() *auth.User {
	return &auth.User{
		ID:           fromPgUUID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time.UTC(),
	}
}

/* ----------------------------------------
	Pgx Helpers
---------------------------------------- */

func toPgUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

func fromPgUUID(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func distributionOrEmpty(d core.TypeDistribution) core.TypeDistribution {
	if d == nil {
		return core.TypeDistribution{}
	}
	return d
}
