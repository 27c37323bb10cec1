package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/lotes/internal/database"
	"github.com/jackc/pgx/v5"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX = database.DBTX

// Pool is a DBTX that can also open transactions. Satisfied by *pgxpool.Pool.
type Pool interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Option is one selectable lookup entry.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// CategoryOptions is the ordered option list of one category.
type CategoryOptions struct {
	Key     string
	Options []Option
}

// OptionBundle holds every bundled category, in registry order.
type OptionBundle []CategoryOptions

// Get returns the options of the category with key.
func (b OptionBundle) Get(key string) ([]Option, bool) {
	for _, c := range b {
		if c.Key == key {
			return c.Options, true
		}
	}
	return nil, false
}

// BatchInput is a submitted batch form: field name to raw string value.
// All values are strings on the wire, including numeric and date fields.
type BatchInput map[string]string

// Batch field names, shared with the form layout.
const (
	FieldProduto         = "produto"
	FieldFornecedor      = "fornecedor"
	FieldQuantMax        = "quant_max"
	FieldUnidade         = "unidade"
	FieldPreco           = "preco"
	FieldTipo            = "tipo"
	FieldDtColheita      = "dt_colheita"
	FieldDtValidade      = "dt_validade"
	FieldClassificacao   = "classificacao"
	FieldLocalArmazenado = "localArmazenado"
	FieldObs             = "obs"
)

// Batch is a parsed, typed batch ready for insertion.
type Batch struct {
	ProdutoID       int32
	FornecedorID    int32
	UnidadeID       int32
	TipoID          int32
	ClassificacaoID int32
	LocalID         int32
	QuantMax        int32
	PrecoCentavos   int64
	DtColheita      time.Time
	DtValidade      time.Time
	Obs             string
}

// insertParams converts the batch to database parameters.
func (b Batch) insertParams() database.InsertLoteParams {
	return database.InsertLoteParams{
		ProdutoID:       b.ProdutoID,
		FornecedorID:    b.FornecedorID,
		UnidadeID:       b.UnidadeID,
		TipoID:          b.TipoID,
		ClassificacaoID: b.ClassificacaoID,
		LocalID:         b.LocalID,
		QuantMax:        b.QuantMax,
		Preco:           CentsToPgNumeric(b.PrecoCentavos),
		DtColheita:      ToPgDate(b.DtColheita),
		DtValidade:      ToPgDate(b.DtValidade),
		Obs:             ToPgText(b.Obs),
	}
}
