package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// batchReference ties a select field to the category its id must exist in.
type batchReference struct {
	field    string
	category string
	id       func(Batch) int32
}

var batchReferences = []batchReference{
	{FieldProduto, "produtos", func(b Batch) int32 { return b.ProdutoID }},
	{FieldFornecedor, "fornecedores", func(b Batch) int32 { return b.FornecedorID }},
	{FieldUnidade, "unidades", func(b Batch) int32 { return b.UnidadeID }},
	{FieldTipo, "tipos", func(b Batch) int32 { return b.TipoID }},
	{FieldClassificacao, "classificacoes", func(b Batch) int32 { return b.ClassificacaoID }},
	{FieldLocalArmazenado, "locaisArmazenamento", func(b Batch) int32 { return b.LocalID }},
}

// ParseBatch converts submitted form values into a Batch.
// Every field is checked; all problems are returned together.
func ParseBatch(in BatchInput) (Batch, ValidationErrors) {
	var (
		b    Batch
		errs ValidationErrors
	)

	get := func(field string) (string, bool) {
		v := strings.TrimSpace(in[field])
		if v == "" {
			errs = append(errs, ValidationError{Field: field, Message: "required field is empty"})
			return "", false
		}
		return v, true
	}

	ids := []struct {
		field string
		dst   *int32
	}{
		{FieldProduto, &b.ProdutoID},
		{FieldFornecedor, &b.FornecedorID},
		{FieldUnidade, &b.UnidadeID},
		{FieldTipo, &b.TipoID},
		{FieldClassificacao, &b.ClassificacaoID},
		{FieldLocalArmazenado, &b.LocalID},
	}
	for _, ref := range ids {
		v, ok := get(ref.field)
		if !ok {
			continue
		}
		id, ok := ParseID(v)
		if !ok {
			errs = append(errs, ValidationError{Field: ref.field, Value: v, Message: "invalid option id"})
			continue
		}
		*ref.dst = id
	}

	if v, ok := get(FieldQuantMax); ok {
		if n, ok := ParsePositiveInt(v); ok {
			b.QuantMax = n
		} else {
			errs = append(errs, ValidationError{Field: FieldQuantMax, Value: v, Message: "invalid number: expected a positive integer"})
		}
	}

	if v, ok := get(FieldPreco); ok {
		if cents, ok := ParsePriceCents(v); ok {
			b.PrecoCentavos = cents
		} else {
			errs = append(errs, ValidationError{Field: FieldPreco, Value: v, Message: "invalid number: expected a price like 1.234,56"})
		}
	}

	dates := []struct {
		field string
		dst   *time.Time
	}{
		{FieldDtColheita, &b.DtColheita},
		{FieldDtValidade, &b.DtValidade},
	}
	for _, d := range dates {
		v, ok := get(d.field)
		if !ok {
			continue
		}
		t, ok := ParseDate(v)
		if !ok {
			errs = append(errs, ValidationError{Field: d.field, Value: v, Message: "invalid date"})
			continue
		}
		*d.dst = t
	}

	b.Obs = strings.TrimSpace(in[FieldObs])
	return b, errs
}

// ValidateBatch parses in and applies the service's batch rules.
func (s *Service) ValidateBatch(in BatchInput) (Batch, ValidationErrors) {
	b, errs := ParseBatch(in)
	if len(errs) > 0 {
		return b, errs
	}
	return b, s.rules.Check(b)
}

// RegisterBatch validates and inserts a batch, returning its id.
// Validation failures are returned as ValidationErrors, including ids that
// do not exist in their category.
func (s *Service) RegisterBatch(ctx context.Context, in BatchInput) (int64, error) {
	b, errs := s.ValidateBatch(in)
	if len(errs) > 0 {
		return 0, errs
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return 0, err
	}
	defer s.limiter.Release()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	errs, err = checkReferences(ctx, tx, b)
	if err != nil {
		return 0, err
	}
	if len(errs) > 0 {
		return 0, errs
	}

	id, err := s.queries.WithTx(tx).InsertLote(ctx, b.insertParams())
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.Info("batch registered",
		"lote_id", id,
		"produto_id", b.ProdutoID,
		"quant_max", b.QuantMax,
		"client", RequestMetaFrom(ctx),
	)
	return int64(id), nil
}

// checkReferences verifies that every referenced id exists in its category.
func checkReferences(ctx context.Context, db DBTX, b Batch) (ValidationErrors, error) {
	var errs ValidationErrors
	for _, ref := range batchReferences {
		def, ok := Get(ref.category)
		if !ok || def.Exists == nil {
			continue
		}
		id := ref.id(b)
		exists, err := def.Exists(ctx, db, id)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", ref.category, err)
		}
		if !exists {
			errs = append(errs, ValidationError{
				Field:   ref.field,
				Value:   fmt.Sprint(id),
				Message: "referenced option does not exist",
			})
		}
	}
	return errs, nil
}
