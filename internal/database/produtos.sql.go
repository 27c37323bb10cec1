package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const getProdutoByNome = `SELECT produto_id, produto_nome FROM produtos WHERE lower(produto_nome) = lower($1)`

// GetProdutoByNome looks a product up by case-insensitive name.
// The boolean is false when no such product exists.
func (q *Queries) GetProdutoByNome(ctx context.Context, nome string) (LookupRow, bool, error) {
	var r LookupRow
	err := q.db.QueryRow(ctx, getProdutoByNome, nome).Scan(&r.ID, &r.Nome)
	if errors.Is(err, pgx.ErrNoRows) {
		return LookupRow{}, false, nil
	}
	if err != nil {
		return LookupRow{}, false, err
	}
	return r, true, nil
}

const createProduto = `INSERT INTO produtos (produto_nome) VALUES ($1) RETURNING produto_id, produto_nome`

func (q *Queries) CreateProduto(ctx context.Context, nome string) (LookupRow, error) {
	var r LookupRow
	err := q.db.QueryRow(ctx, createProduto, nome).Scan(&r.ID, &r.Nome)
	return r, err
}
