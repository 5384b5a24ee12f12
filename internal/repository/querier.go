package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func exec(ctx context.Context, q querier, builder squirrel.Sqlizer) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func exists(ctx context.Context, q querier, builder squirrel.SelectBuilder) (bool, error) {
	sql, args, err := builder.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var found bool
	if err := q.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, mapError(err)
	}
	return found, nil
}
