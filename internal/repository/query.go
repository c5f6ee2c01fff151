package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
)

// queryAll renders ds as a prepared statement and scans every row with scan.
// An empty result is an empty (non-nil) slice so responses render "[]".
func queryAll[T any](ctx context.Context, db *sql.DB, ds *goqu.SelectDataset, scan func(rowScanner) (T, error)) ([]T, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne scans the first row of ds, returning notFound when there is none.
func queryOne[T any](ctx context.Context, db *sql.DB, ds *goqu.SelectDataset, scan func(rowScanner) (T, error), notFound error) (*T, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	v, err := scan(db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}
	return &v, nil
}

// exists reports whether query (a SELECT 1 ... statement) returns a row.
func exists(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
