package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

var errNetwork = errors.New("dial tcp: connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fullBundle returns a bundle with every category the default layout binds.
func fullBundle() Bundle {
	return Bundle{
		CategoryStatus:         {{ID: "1", Label: "Ativo"}},
		CategoryTipos:          {{ID: "1", Label: "Fruta"}, {ID: "2", Label: "Verdura"}},
		CategoryProdutos:       {{ID: "7", Label: "Maçã"}, {ID: "8", Label: "Banana"}},
		CategoryFornecedores:   {{ID: "3", Label: "Sítio Boa Vista"}},
		CategoryUnidades:       {{ID: "1", Label: "kg"}, {ID: "2", Label: "cx"}},
		CategoryClassificacoes: {{ID: "4", Label: "Extra"}},
		CategoryLocais:         {{ID: "5", Label: "Câmara Fria"}},
	}
}

// stubFetcher returns a fixed result and counts calls.
type stubFetcher struct {
	bundle Bundle
	err    error
	calls  atomic.Int32
}

func (f *stubFetcher) FetchOptions(ctx context.Context) (Bundle, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

// gateFetcher blocks every fetch until release is closed.
type gateFetcher struct {
	bundle  Bundle
	err     error
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	once    sync.Once
}

func newGateFetcher(b Bundle, err error) *gateFetcher {
	return &gateFetcher{
		bundle:  b,
		err:     err,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (f *gateFetcher) FetchOptions(ctx context.Context) (Bundle, error) {
	f.calls.Add(1)
	f.once.Do(func() { close(f.started) })
	<-f.release
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

// stubCreator answers every creation with the configured option or error.
type stubCreator struct {
	mu     sync.Mutex
	option Option
	err    error
	labels []string
	ctx    context.Context // of the last call

	started chan struct{} // closed on first call when non-nil
	release chan struct{} // calls block until closed when non-nil
	once    sync.Once
}

func (c *stubCreator) CreateOption(ctx context.Context, cat Category, label string) (Option, error) {
	c.mu.Lock()
	c.labels = append(c.labels, label)
	c.ctx = ctx
	c.mu.Unlock()

	if c.started != nil {
		c.once.Do(func() { close(c.started) })
	}
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return Option{}, c.err
	}
	return c.option, nil
}

func (c *stubCreator) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.labels...)
}

// stubSubmitter records submitted values.
type stubSubmitter struct {
	mu     sync.Mutex
	id     string
	err    error
	values []Values
}

func (s *stubSubmitter) SubmitBatch(ctx context.Context, v Values) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, v)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

// fieldErrs mimics a backend validation error naming invalid fields.
type fieldErrs []string

func (e fieldErrs) Error() string    { return "invalid batch" }
func (e fieldErrs) Fields() []string { return e }
