package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertLote = `
INSERT INTO lotes (
    produto_id, fornecedor_id, unidade_id, tipo_id, classificacao_id, local_id,
    quant_max, preco, dt_colheita, dt_validade, obs
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING lote_id`

// InsertLoteParams carries one batch row.
type InsertLoteParams struct {
	ProdutoID       int32
	FornecedorID    int32
	UnidadeID       int32
	TipoID          int32
	ClassificacaoID int32
	LocalID         int32
	QuantMax        int32
	Preco           pgtype.Numeric
	DtColheita      pgtype.Date
	DtValidade      pgtype.Date
	Obs             pgtype.Text
}

func (q *Queries) InsertLote(ctx context.Context, arg InsertLoteParams) (int32, error) {
	var id int32
	err := q.db.QueryRow(ctx, insertLote,
		arg.ProdutoID,
		arg.FornecedorID,
		arg.UnidadeID,
		arg.TipoID,
		arg.ClassificacaoID,
		arg.LocalID,
		arg.QuantMax,
		arg.Preco,
		arg.DtColheita,
		arg.DtValidade,
		arg.Obs,
	).Scan(&id)
	return id, err
}
