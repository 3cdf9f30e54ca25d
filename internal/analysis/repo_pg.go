package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO analyses (id, plan, job_urls, industry, result, degraded, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	urls, err := json.Marshal(record.JobURLs)
	if err != nil {
		return err
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.Plan,
		urls,
		record.Industry,
		result,
		record.Degraded,
		record.CreatedAt,
	)
	return err
}

// GetByID returns a record by its ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	const query = `
SELECT id, plan, job_urls, industry, result, degraded, created_at
FROM analyses WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return record, err
}

// List returns records newest first with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, plan, job_urls, industry, result, degraded, created_at
FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		record  Record
		rawURLs []byte
		rawRes  []byte
	)
	if err := row.Scan(&record.ID, &record.Plan, &rawURLs, &record.Industry, &rawRes, &record.Degraded, &record.CreatedAt); err != nil {
		return Record{}, err
	}
	if len(rawURLs) > 0 {
		if err := json.Unmarshal(rawURLs, &record.JobURLs); err != nil {
			return Record{}, err
		}
	}
	if len(rawRes) > 0 {
		if err := json.Unmarshal(rawRes, &record.Result); err != nil {
			return Record{}, err
		}
	}
	return record, nil
}

var _ Repo = (*PGRepo)(nil)
