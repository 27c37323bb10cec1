// Package database holds the PostgreSQL queries and schema migrations for the
// lookup catalogs, products and batches.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries runs the application's statements against a pool or a transaction.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// LookupRow is one id/name pair from any lookup table.
type LookupRow struct {
	ID   int32
	Nome string
}

func (q *Queries) listLookup(ctx context.Context, sql string) ([]LookupRow, error) {
	rows, err := q.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (LookupRow, error) {
		var r LookupRow
		err := row.Scan(&r.ID, &r.Nome)
		return r, err
	})
}

func (q *Queries) lookupExists(ctx context.Context, sql string, id int32) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, sql, id).Scan(&exists)
	return exists, err
}
