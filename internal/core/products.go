package core

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JonMunkholm/lotes/internal/database"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxLabelLength is the longest product name accepted, in characters.
const MaxLabelLength = 100

var (
	// ErrEmptyLabel is returned when a product name is blank after cleanup.
	ErrEmptyLabel = errors.New("empty product name")
	// ErrLabelTooLong is returned when a product name exceeds MaxLabelLength.
	ErrLabelTooLong = errors.New("product name too long")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

var (
	stripPolicy     *bluemonday.Policy
	stripPolicyOnce sync.Once
)

func labelPolicy() *bluemonday.Policy {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return stripPolicy
}

// CanonicalLabel cleans a typed product name: markup is stripped, whitespace
// collapsed and the result title-cased in Brazilian Portuguese.
//
//	CanonicalLabel("  tomate   <b>cereja</b> ") == "Tomate Cereja"
func CanonicalLabel(raw string) (string, error) {
	s := labelPolicy().Sanitize(raw)
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", ErrEmptyLabel
	}
	if utf8.RuneCountInString(s) > MaxLabelLength {
		return "", fmt.Errorf("%w: max %d characters", ErrLabelTooLong, MaxLabelLength)
	}
	return cases.Title(language.BrazilianPortuguese).String(s), nil
}

// CreateProduct registers a product typed in the form.
// If a product with the same name (ignoring case) exists it is returned with
// created=false. A concurrent insert of the same name resolves to that row.
func (s *Service) CreateProduct(ctx context.Context, raw string) (opt Option, created bool, err error) {
	label, err := CanonicalLabel(raw)
	if err != nil {
		return Option{}, false, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return Option{}, false, err
	}
	defer s.limiter.Release()

	q := s.queries

	if row, found, err := q.GetProdutoByNome(ctx, label); err != nil {
		return Option{}, false, fmt.Errorf("lookup product: %w", err)
	} else if found {
		return rowToOption(row), false, nil
	}

	row, err := q.CreateProduto(ctx, label)
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return Option{}, false, fmt.Errorf("create product: %w", err)
		}
		existing, found, lookupErr := q.GetProdutoByNome(ctx, label)
		if lookupErr != nil || !found {
			return Option{}, false, fmt.Errorf("create product: %w", err)
		}
		return rowToOption(existing), false, nil
	}

	slog.Info("product created",
		"produto_id", row.ID,
		"nome", row.Nome,
		"client", RequestMetaFrom(ctx),
	)
	return rowToOption(row), true, nil
}

func rowToOption(r database.LookupRow) Option {
	return Option{ID: int64(r.ID), Label: r.Nome}
}

// OptionsFromRows converts lookup rows to options, keeping their order.
func OptionsFromRows(rows []database.LookupRow) []Option {
	opts := make([]Option, len(rows))
	for i, r := range rows {
		opts[i] = rowToOption(r)
	}
	return opts
}
