package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertDataset = `
INSERT INTO equipment_datasets (
    id, uploader_id, file_key, file_name,
    total_count, avg_flowrate, avg_pressure, avg_temperature, type_distribution
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type InsertDatasetParams struct {
	ID               pgtype.UUID
	UploaderID       pgtype.UUID
	FileKey          string
	FileName         string
	TotalCount       int32
	AvgFlowrate      float64
	AvgPressure      float64
	AvgTemperature   float64
	TypeDistribution []byte
}

func (q *Queries) InsertDataset(ctx context.Context, arg InsertDatasetParams) error {
	_, err := q.db.Exec(ctx, insertDataset,
		arg.ID,
		arg.UploaderID,
		arg.FileKey,
		arg.FileName,
		arg.TotalCount,
		arg.AvgFlowrate,
		arg.AvgPressure,
		arg.AvgTemperature,
		arg.TypeDistribution,
	)
	return err
}

const datasetColumns = `
    d.id, d.uploader_id, u.username, d.file_key, d.file_name, d.uploaded_at,
    d.total_count, d.avg_flowrate, d.avg_pressure, d.avg_temperature, d.type_distribution
FROM equipment_datasets d
LEFT JOIN users u ON u.id = d.uploader_id
`

const getDataset = `SELECT` + datasetColumns + `WHERE d.id = $1`

const listDatasets = `SELECT` + datasetColumns + `ORDER BY d.uploaded_at DESC, d.id`

type DatasetRow struct {
	ID               pgtype.UUID
	UploaderID       pgtype.UUID
	Username         pgtype.Text
	FileKey          string
	FileName         string
	UploadedAt       pgtype.Timestamptz
	TotalCount       int32
	AvgFlowrate      float64
	AvgPressure      float64
	AvgTemperature   float64
	TypeDistribution []byte
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDatasetRow(row rowScanner) (DatasetRow, error) {
	var i DatasetRow
	err := row.Scan(
		&i.ID,
		&i.UploaderID,
		&i.Username,
		&i.FileKey,
		&i.FileName,
		&i.UploadedAt,
		&i.TotalCount,
		&i.AvgFlowrate,
		&i.AvgPressure,
		&i.AvgTemperature,
		&i.TypeDistribution,
	)
	return i, err
}

func (q *Queries) GetDataset(ctx context.Context, id pgtype.UUID) (DatasetRow, error) {
	return scanDatasetRow(q.db.QueryRow(ctx, getDataset, id))
}

func (q *Queries) ListDatasets(ctx context.Context) ([]DatasetRow, error) {
	rows, err := q.db.Query(ctx, listDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DatasetRow
	for rows.Next() {
		i, err := scanDatasetRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteDataset = `DELETE FROM equipment_datasets WHERE id = $1`

func (q *Queries) DeleteDataset(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteDataset, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const datasetKeysByUploader = `SELECT file_key FROM equipment_datasets WHERE uploader_id = $1`

func (q *Queries) DatasetKeysByUploader(ctx context.Context, uploaderID pgtype.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, datasetKeysByUploader, uploaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

const insertUser = `
INSERT INTO users (id, username, password_hash)
VALUES ($1, $2, $3)
RETURNING created_at
`

func (q *Queries) InsertUser(ctx context.Context, id pgtype.UUID, username, passwordHash string) (pgtype.Timestamptz, error) {
	var createdAt pgtype.Timestamptz
	err := q.db.QueryRow(ctx, insertUser, id, username, passwordHash).Scan(&createdAt)
	return createdAt, err
}

type UserRow struct {
	ID           pgtype.UUID
	Username     string
	PasswordHash string
	CreatedAt    pgtype.Timestamptz
}

const getUserByUsername = `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (UserRow, error) {
	var i UserRow
	err := q.db.QueryRow(ctx, getUserByUsername, username).Scan(&i.ID, &i.Username, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getUserByID = `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (UserRow, error) {
	var i UserRow
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(&i.ID, &i.Username, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const deleteUser = `DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUser(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
