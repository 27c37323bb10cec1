package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestSession(t *testing.T, fetcher Fetcher, creator Creator, submitter Submitter) *Session {
	t.Helper()
	s := NewSession("test", Deps{
		Fetcher:   fetcher,
		Creator:   creator,
		Submitter: submitter,
		Logger:    discardLogger(),
	})
	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})
	return s
}

func fieldByName(t *testing.T, s *Session, name Field) FieldConfig {
	t.Helper()
	cfg, ok := s.FieldConfig(name)
	if !ok {
		t.Fatalf("FieldConfig(%s) not found", name)
	}
	return cfg
}

func fillValid(t *testing.T, s *Session) {
	t.Helper()
	changes := []struct {
		field Field
		raw   string
	}{
		{FieldProduto, "7"},
		{FieldFornecedor, "3"},
		{FieldQuantMax, "120"},
		{FieldUnidade, "1"},
		{FieldPreco, "1234,5"},
		{FieldTipo, "1"},
		{FieldDtColheita, "2025-03-01"},
		{FieldDtValidade, "2025-03-20"},
		{FieldClassificacao, "4"},
		{FieldLocalArmazenado, "5"},
	}
	for _, c := range changes {
		if err := s.Change(c.field, c.raw); err != nil {
			t.Fatalf("Change(%s, %q): %v", c.field, c.raw, err)
		}
	}
}

func TestSession_FieldsBeforeAndAfterLoad(t *testing.T) {
	f := newGateFetcher(fullBundle(), nil)
	s := newTestSession(t, f, &stubCreator{}, &stubSubmitter{})

	s.Start()
	<-f.started

	for _, cfg := range s.Fields() {
		if cfg.Select && (!cfg.OptionsLoading || len(cfg.Options) != 0) {
			t.Errorf("%s before load: loading=%v options=%v", cfg.Name, cfg.OptionsLoading, cfg.Options)
		}
	}

	close(f.release)
	s.Wait()

	tipo := fieldByName(t, s, FieldTipo)
	if tipo.OptionsLoading || tipo.OptionsFailed {
		t.Errorf("tipo after load: loading=%v failed=%v", tipo.OptionsLoading, tipo.OptionsFailed)
	}
	if diff := cmp.Diff(fullBundle()[CategoryTipos], tipo.Options); diff != "" {
		t.Errorf("tipo options mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_FieldConfigShape(t *testing.T) {
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	produto := fieldByName(t, s, FieldProduto)
	if !produto.Select || !produto.Creatable || produto.OnCreate == nil {
		t.Errorf("produto config = %+v, want creatable select", produto)
	}
	if produto.Label != "Produto" || produto.Placeholder != "Selecione ou Digite um Novo Produto" {
		t.Errorf("produto label/placeholder = %q/%q", produto.Label, produto.Placeholder)
	}

	fornecedor := fieldByName(t, s, FieldFornecedor)
	if fornecedor.Creatable || fornecedor.OnCreate != nil {
		t.Error("fornecedor should not be creatable")
	}

	if !fieldByName(t, s, FieldObs).TextArea {
		t.Error("obs should be a text area")
	}
	if !fieldByName(t, s, FieldPreco).PriceFormatted {
		t.Error("preco should be price formatted")
	}

	_ = s.Change(FieldProduto, "8")
	produto = fieldByName(t, s, FieldProduto)
	if produto.Value != "8" || produto.DisplayValue != "Banana" {
		t.Errorf("produto value/display = %q/%q, want 8/Banana", produto.Value, produto.DisplayValue)
	}

	if err := produto.OnChange("7"); err != nil {
		t.Fatalf("OnChange: %v", err)
	}
	if got := s.State().Value(FieldProduto); got != "7" {
		t.Errorf("value after OnChange = %q, want 7", got)
	}
}

func TestSession_LoadFailureShownOnEverySelect(t *testing.T) {
	s := newTestSession(t, &stubFetcher{err: errNetwork}, &stubCreator{}, &stubSubmitter{})

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("Load succeeded, want failure")
	}

	for _, cfg := range s.Fields() {
		if !cfg.Select {
			continue
		}
		if !cfg.OptionsFailed || cfg.OptionsError == "" || len(cfg.Options) != 0 {
			t.Errorf("%s: failed=%v error=%q options=%v", cfg.Name, cfg.OptionsFailed, cfg.OptionsError, cfg.Options)
		}
	}
}

func TestSession_ChangeGoesThroughAdapters(t *testing.T) {
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, &stubSubmitter{})

	if err := s.Change(FieldQuantMax, "007"); err != nil {
		t.Fatalf("Change: %v", err)
	}
	if got := s.State().Value(FieldQuantMax); got != "7" {
		t.Errorf("quant_max = %q, want 7", got)
	}

	if err := s.Change(FieldQuantMax, "7a"); !errors.Is(err, ErrRejectedInput) {
		t.Errorf("Change(7a) = %v, want ErrRejectedInput", err)
	}
	if got := s.State().Value(FieldQuantMax); got != "7" {
		t.Errorf("quant_max after rejected input = %q, want 7", got)
	}

	if err := s.ChangePrice("R$ 1.234,5"); err != nil {
		t.Fatalf("ChangePrice: %v", err)
	}
	if got := s.State().Value(FieldPreco); got != "1.234,50" {
		t.Errorf("preco = %q, want 1.234,50", got)
	}

	if err := s.Change("peso", "1"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Change(peso) = %v, want ErrUnknownField", err)
	}
}

func TestSession_SelectTakesOnlyCatalogIDs(t *testing.T) {
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Change(FieldFornecedor, "3"); err != nil {
		t.Fatalf("Change(fornecedor, 3): %v", err)
	}

	tests := []struct {
		field Field
		raw   string
		keep  string
	}{
		{FieldFornecedor, "999", "3"},
		{FieldProduto, "Manga", ""},
	}
	for _, tt := range tests {
		if err := s.Change(tt.field, tt.raw); !errors.Is(err, ErrRejectedInput) {
			t.Errorf("Change(%s, %q) = %v, want ErrRejectedInput", tt.field, tt.raw, err)
		}
		if got := s.State().Value(tt.field); got != tt.keep {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.keep)
		}
	}
	if s.Flow().PendingFor(FieldProduto) != nil {
		t.Error("rejected label started a creation")
	}

	if err := s.Change(FieldFornecedor, ""); err != nil {
		t.Errorf("clearing a select: %v", err)
	}
}

func TestSession_CreateAsync(t *testing.T) {
	creator := &stubCreator{
		option:  Option{ID: "42", Label: "Manga"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, creator, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.CreateAsync(context.Background(), FieldProduto, "manga"); err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	<-creator.started

	cfg := fieldByName(t, s, FieldProduto)
	if !cfg.Pending || cfg.DisplayValue != "manga" || !cfg.Busy() {
		t.Errorf("pending config: pending=%v display=%q", cfg.Pending, cfg.DisplayValue)
	}

	if err := s.CreateAsync(context.Background(), FieldProduto, "uva"); !errors.Is(err, ErrCreationPending) {
		t.Errorf("second CreateAsync = %v, want ErrCreationPending", err)
	}

	close(creator.release)
	s.Wait()

	cfg = fieldByName(t, s, FieldProduto)
	if cfg.Pending || cfg.Value != "42" || cfg.DisplayValue != "Manga" {
		t.Errorf("after creation: pending=%v value=%q display=%q", cfg.Pending, cfg.Value, cfg.DisplayValue)
	}
	if cfg.CreateError != "" {
		t.Errorf("CreateError = %q, want none", cfg.CreateError)
	}
}

type clientKey struct{}

func TestSession_CreateAsyncKeepsRequestValues(t *testing.T) {
	creator := &stubCreator{option: Option{ID: "42", Label: "Manga"}}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, creator, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The request is over before the creation runs.
	reqCtx, cancel := context.WithCancel(context.WithValue(context.Background(), clientKey{}, "10.0.0.7"))
	cancel()

	if err := s.CreateAsync(reqCtx, FieldProduto, "Manga"); err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	s.Wait()

	if got := s.State().Value(FieldProduto); got != "42" {
		t.Errorf("produto = %q, want 42", got)
	}
	creator.mu.Lock()
	got := creator.ctx.Value(clientKey{})
	creator.mu.Unlock()
	if got != "10.0.0.7" {
		t.Errorf("creator saw client %v, want 10.0.0.7", got)
	}
}

func TestSession_CreateFailureReported(t *testing.T) {
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{err: errNetwork}, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.CreateAsync(context.Background(), FieldProduto, "Manga"); err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	s.Wait()

	var ce *CreationError
	if !errors.As(s.CreateError(FieldProduto), &ce) {
		t.Fatalf("CreateError = %v, want *CreationError", s.CreateError(FieldProduto))
	}
	cfg := fieldByName(t, s, FieldProduto)
	if cfg.Value != "" || cfg.CreateError == "" {
		t.Errorf("after failure: value=%q createError=%q", cfg.Value, cfg.CreateError)
	}

	// Other fields and the catalog are unaffected.
	if cfg.OptionsFailed || len(cfg.Options) != 2 {
		t.Errorf("catalog affected by creation failure: %+v", cfg.Options)
	}
}

func TestSession_CreateSelectsExisting(t *testing.T) {
	creator := &stubCreator{}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, creator, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Create(context.Background(), FieldProduto, "BANANA"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := s.State().Value(FieldProduto); got != "8" {
		t.Errorf("produto = %q, want 8", got)
	}
	if len(creator.calls()) != 0 {
		t.Error("creator called for an existing label")
	}
}

func TestSession_SubmitIncomplete(t *testing.T) {
	sub := &stubSubmitter{id: "1"}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, sub)

	_ = s.Change(FieldProduto, "7")

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Submit = %v, want ErrIncomplete", err)
	}
	errs := s.State().Errors()
	if errs[FieldProduto] {
		t.Error("filled field flagged")
	}
	for _, f := range []Field{FieldFornecedor, FieldQuantMax, FieldDtValidade} {
		if !errs[f] {
			t.Errorf("empty field %s not flagged", f)
		}
	}
	if len(sub.values) != 0 {
		t.Error("submitter called for an incomplete form")
	}

	// Filling a flagged field clears its flag right away.
	_ = s.Change(FieldFornecedor, "3")
	if s.State().Error(FieldFornecedor) {
		t.Error("flag kept after the field was filled")
	}
}

func TestSession_Submit(t *testing.T) {
	sub := &stubSubmitter{id: "55"}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, sub)
	fillValid(t, s)
	_ = s.Change(FieldObs, "frágil")

	id, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "55" {
		t.Errorf("id = %q, want 55", id)
	}
	if len(sub.values) != 1 {
		t.Fatalf("submitter calls = %d, want 1", len(sub.values))
	}
	got := sub.values[0]
	if got[FieldPreco] != "1.234,50" || got[FieldQuantMax] != "120" || got[FieldObs] != "frágil" {
		t.Errorf("submitted values = %v", got)
	}
	if v := s.State().Value(FieldProduto); v != "" {
		t.Errorf("form not cleared after submit: produto = %q", v)
	}
}

func TestSession_SubmitBackendFieldErrors(t *testing.T) {
	sub := &stubSubmitter{err: fieldErrs{"tipo", "dt_validade"}}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, sub)
	fillValid(t, s)

	if _, err := s.Submit(context.Background()); err == nil {
		t.Fatal("Submit succeeded, want backend error")
	}
	errs := s.State().Errors()
	if !errs[FieldTipo] || !errs[FieldDtValidade] || errs[FieldProduto] {
		t.Errorf("flags = %v, want tipo and dt_validade", errs)
	}
	if s.State().Value(FieldProduto) == "" {
		t.Error("values cleared after failed submit")
	}
}

func TestSession_SubmitWhileCreationPending(t *testing.T) {
	creator := &stubCreator{
		option:  Option{ID: "42", Label: "Manga"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sub := &stubSubmitter{id: "1"}
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, creator, sub)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fillValid(t, s)

	if err := s.CreateAsync(context.Background(), FieldProduto, "Manga"); err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	<-creator.started

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrCreationPending) {
		t.Errorf("Submit = %v, want ErrCreationPending", err)
	}
	close(creator.release)
	s.Wait()

	if _, err := s.Submit(context.Background()); err != nil {
		t.Errorf("Submit after creation: %v", err)
	}
	if got := sub.values[0][FieldProduto]; got != "42" {
		t.Errorf("submitted produto = %q, want 42", got)
	}
}

func TestSession_CloseDiscardsLateCompletions(t *testing.T) {
	f := newGateFetcher(fullBundle(), nil)
	creator := &stubCreator{
		option:  Option{ID: "42", Label: "Manga"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewSession("closing", Deps{Fetcher: f, Creator: creator, Logger: discardLogger()})

	s.Start()
	<-f.started
	if err := s.CreateAsync(context.Background(), FieldProduto, "Manga"); err != nil {
		t.Fatalf("CreateAsync: %v", err)
	}
	<-creator.started

	s.Close()
	close(f.release)
	close(creator.release)
	s.Wait()

	if !s.Closed() {
		t.Error("Closed = false")
	}
	if view := s.Store().Category(CategoryProdutos); len(view.Options) != 0 || view.Status == StatusReady {
		t.Errorf("store updated after teardown: %+v", view)
	}
	if err := s.CreateError(FieldProduto); err != nil {
		t.Errorf("CreateError after teardown = %v, want nil", err)
	}
	if err := s.Change(FieldObs, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Change after Close = %v, want ErrClosed", err)
	}
}

func TestSession_Suggest(t *testing.T) {
	s := newTestSession(t, &stubFetcher{bundle: fullBundle()}, &stubCreator{}, &stubSubmitter{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := s.Suggest(FieldProduto, "bananna", 3)
	if len(got) != 1 || got[0].ID != "8" {
		t.Errorf("Suggest = %v, want Banana", got)
	}
	if got := s.Suggest(FieldObs, "x", 3); got != nil {
		t.Errorf("Suggest(obs) = %v, want nil", got)
	}
}
