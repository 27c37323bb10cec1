package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/lotes/internal/database"
	"github.com/jackc/pgx/v5"
)

// ErrUnknownCategory is returned for a category key that is not registered.
var ErrUnknownCategory = errors.New("unknown category")

// ServiceOptions tunes a Service. Zero values select the defaults.
type ServiceOptions struct {
	MaxConcurrentWrites int
	MaxWaitTime         time.Duration
	Rules               []RuleSpec // nil means DefaultRules
}

// Service provides the backend business logic for batch registration.
type Service struct {
	pool    Pool
	queries *database.Queries
	limiter *WriteLimiter
	rules   *BatchRules
}

// NewService creates a new Service instance. At least one category must be
// registered.
func NewService(pool Pool, opts ServiceOptions) (*Service, error) {
	if CategoryCount() == 0 {
		return nil, errors.New("no option categories registered")
	}

	specs := opts.Rules
	if specs == nil {
		specs = DefaultRules
	}
	rules, err := CompileRules(specs)
	if err != nil {
		return nil, fmt.Errorf("batch rules: %w", err)
	}

	return &Service{
		pool:    pool,
		queries: database.New(pool),
		limiter: NewWriteLimiter(opts.MaxConcurrentWrites, opts.MaxWaitTime),
		rules:   rules,
	}, nil
}

// Limiter returns the write limiter, used by shutdown to drain writes.
func (s *Service) Limiter() *WriteLimiter {
	return s.limiter
}

// ListCategories returns display information about all registered categories.
func (s *Service) ListCategories() []CategoryInfo {
	defs := All()
	infos := make([]CategoryInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// LoadOptions reads every bundled category in one read-only, repeatable-read
// transaction. Either all categories are returned or an error.
func (s *Service) LoadOptions(ctx context.Context) (OptionBundle, error) {
	defs := Bundled()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin options snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	bundle := make(OptionBundle, 0, len(defs))
	for _, def := range defs {
		opts, err := def.List(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", def.Info.Key, err)
		}
		if opts == nil {
			opts = []Option{}
		}
		bundle = append(bundle, CategoryOptions{Key: def.Info.Key, Options: opts})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit options snapshot: %w", err)
	}

	slog.Debug("options loaded", "categories", len(bundle))
	return bundle, nil
}

// LoadCategory reads the options of a single category.
func (s *Service) LoadCategory(ctx context.Context, key string) ([]Option, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, key)
	}

	opts, err := def.List(ctx, s.pool)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	if opts == nil {
		opts = []Option{}
	}
	return opts, nil
}
