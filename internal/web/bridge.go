package web

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/JonMunkholm/lotes/internal/config"
	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/JonMunkholm/lotes/internal/form"
)

// FormDeps wires form sessions to the backend service: the bundled fetch,
// product creation and batch registration.
func FormDeps(svc Service, cfg config.FormConfig, logger *slog.Logger) form.Deps {
	return form.Deps{
		Fetcher:       form.FetcherFunc(func(ctx context.Context) (form.Bundle, error) { return fetchBundle(ctx, svc) }),
		Creator:       form.CreatorFunc(func(ctx context.Context, cat form.Category, label string) (form.Option, error) { return createOption(ctx, svc, cat, label) }),
		Submitter:     form.SubmitterFunc(func(ctx context.Context, v form.Values) (string, error) { return submitBatch(ctx, svc, v) }),
		Logger:        logger,
		LoadTimeout:   cfg.OptionsTimeout,
		CreateTimeout: cfg.CreateTimeout,
	}
}

func fetchBundle(ctx context.Context, svc Service) (form.Bundle, error) {
	bundle, err := svc.LoadOptions(ctx)
	if err != nil {
		return nil, err
	}

	out := make(form.Bundle, len(bundle))
	for _, c := range bundle {
		out[form.Category(c.Key)] = toFormOptions(c.Options)
	}
	return out, nil
}

func createOption(ctx context.Context, svc Service, cat form.Category, label string) (form.Option, error) {
	if cat != form.CategoryProdutos {
		return form.Option{}, fmt.Errorf("%w: %s", form.ErrNotCreatable, cat)
	}
	opt, _, err := svc.CreateProduct(ctx, label)
	if err != nil {
		return form.Option{}, err
	}
	return toFormOption(opt), nil
}

func submitBatch(ctx context.Context, svc Service, v form.Values) (string, error) {
	in := make(core.BatchInput, len(v))
	for f, val := range v {
		in[string(f)] = val
	}
	id, err := svc.RegisterBatch(ctx, in)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func toFormOption(o core.Option) form.Option {
	return form.Option{ID: strconv.FormatInt(o.ID, 10), Label: o.Label}
}

func toFormOptions(opts []core.Option) []form.Option {
	out := make([]form.Option, len(opts))
	for i, o := range opts {
		out[i] = toFormOption(o)
	}
	return out
}
