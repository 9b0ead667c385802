package store

import (
	"context"

	perr "comicvault/internal/platform/errors"
)

// Exec runs a write and returns the rows affected
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	t, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return t.RowsAffected(), nil
}

// Scalar queries the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	err := q.QueryRow(ctx, sql, args...).Scan(&v)
	return v, err
}

// One maps the first row with scan; no rows yields perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rs.Close()
	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(rs)
	if err != nil {
		return zero, err
	}
	return item, rs.Err()
}

// Many maps every row with scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []T
	for rs.Next() {
		item, err := scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rs.Err()
}

// Set collects a single int64 column into a lookup set
func Set(ctx context.Context, q RowQuerier, sql string, args ...any) (map[int64]struct{}, error) {
	ids, err := Many(ctx, q, func(r Row) (int64, error) {
		var id int64
		return id, r.Scan(&id)
	}, sql, args...)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
