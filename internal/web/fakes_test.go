package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/lotes/internal/config"
	"github.com/JonMunkholm/lotes/internal/core"
	"github.com/JonMunkholm/lotes/internal/form"
)

// fakeService is an in-memory Service.
type fakeService struct {
	mu        sync.Mutex
	bundle    core.OptionBundle
	loadErr   error
	product   core.Option
	created   bool
	createErr error
	batchID   int64
	batchErr  error

	names   []string
	batches []core.BatchInput
	ips     []string
}

func newFakeService() *fakeService {
	return &fakeService{
		bundle: core.OptionBundle{
			{Key: "status", Options: []core.Option{{ID: 1, Label: "Ativo"}}},
			{Key: "tipos", Options: []core.Option{{ID: 1, Label: "Fruta"}, {ID: 2, Label: "Verdura"}}},
			{Key: "produtos", Options: []core.Option{{ID: 7, Label: "Maçã"}, {ID: 8, Label: "Banana"}}},
			{Key: "fornecedores", Options: []core.Option{{ID: 3, Label: "Sítio Boa Vista"}}},
			{Key: "unidades", Options: []core.Option{{ID: 1, Label: "kg"}}},
			{Key: "classificacoes", Options: []core.Option{{ID: 4, Label: "Extra"}}},
			{Key: "locaisArmazenamento", Options: []core.Option{{ID: 5, Label: "Câmara Fria"}}},
		},
		product: core.Option{ID: 42, Label: "Manga"},
		created: true,
		batchID: 99,
	}
}

func (f *fakeService) setLoadErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadErr = err
}

func (f *fakeService) LoadOptions(ctx context.Context) (core.OptionBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.bundle, nil
}

func (f *fakeService) LoadCategory(ctx context.Context, key string) ([]core.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	opts, ok := f.bundle.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownCategory, key)
	}
	return opts, nil
}

func (f *fakeService) CreateProduct(ctx context.Context, raw string) (core.Option, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, raw)
	f.ips = append(f.ips, core.RequestMetaFrom(ctx).IP)
	if f.createErr != nil {
		return core.Option{}, false, f.createErr
	}
	return f.product, f.created, nil
}

func (f *fakeService) RegisterBatch(ctx context.Context, in core.BatchInput) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, in)
	f.ips = append(f.ips, core.RequestMetaFrom(ctx).IP)
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	return f.batchID, nil
}

func (f *fakeService) lastBatch() core.BatchInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Form: config.FormConfig{
			OptionsTimeout: time.Second,
			CreateTimeout:  time.Second,
			SimilarHints:   3,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer builds a server over svc with its own session registry.
func newTestServer(t *testing.T, svc *fakeService, cfg *config.Config) (*Server, *form.Registry) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	reg := form.NewRegistry(FormDeps(svc, cfg.Form, discardLogger()), time.Minute)
	srv := NewServer(svc, reg, cfg)
	t.Cleanup(func() {
		reg.CloseAll()
		srv.Shutdown(context.Background())
	})
	return srv, reg
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(method, target string, vals url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}
