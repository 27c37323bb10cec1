package form

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type flowFixture struct {
	store   *OptionStore
	state   *State
	creator *stubCreator
	flow    *CreateFlow
}

func newFlowFixture(t *testing.T, creator *stubCreator) flowFixture {
	t.Helper()
	l := DefaultLayout()
	store := newLoadedStore(t)
	state := NewState(l.Names(), l.Required())
	return flowFixture{
		store:   store,
		state:   state,
		creator: creator,
		flow:    NewCreateFlow(store, state, creator, l.Creatable(), discardLogger()),
	}
}

func hasLabel(opts []Option, label string) bool {
	for _, o := range opts {
		if o.Label == label {
			return true
		}
	}
	return false
}

func TestCreateFlow_ScenarioB(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "42", Label: "Manga"}})
	before := len(fx.store.Category(CategoryProdutos).Options)

	p, err := fx.flow.Begin(FieldProduto, "Manga")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if p == nil {
		t.Fatal("Begin returned no pending creation")
	}
	if got := fx.state.Value(FieldProduto); got != "Manga" {
		t.Errorf("optimistic value = %q, want Manga", got)
	}
	if fx.flow.Pending(CategoryProdutos) == nil {
		t.Error("category not pending after Begin")
	}

	if err := fx.flow.Resolve(context.Background(), p); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	opts := fx.store.Category(CategoryProdutos).Options
	if len(opts) != before+1 {
		t.Fatalf("len(produtos) = %d, want %d", len(opts), before+1)
	}
	if diff := cmp.Diff(Option{ID: "42", Label: "Manga"}, opts[len(opts)-1]); diff != "" {
		t.Errorf("appended option mismatch (-want +got):\n%s", diff)
	}
	if got := fx.state.Value(FieldProduto); got != "42" {
		t.Errorf("FormValues[produto] = %q, want 42", got)
	}
	if fx.flow.Pending(CategoryProdutos) != nil {
		t.Error("category still pending after Resolve")
	}
}

func TestCreateFlow_ScenarioC(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{err: errNetwork})

	err := fx.flow.Create(context.Background(), FieldProduto, "Manga")

	var ce *CreationError
	if !errors.As(err, &ce) {
		t.Fatalf("Create error = %v, want *CreationError", err)
	}
	if ce.Category != CategoryProdutos || ce.Label != "Manga" {
		t.Errorf("CreationError = %+v", ce)
	}
	if !errors.Is(err, errNetwork) {
		t.Errorf("CreationError does not wrap the network failure: %v", err)
	}
	if got := fx.state.Value(FieldProduto); got != "" {
		t.Errorf("FormValues[produto] = %q, want empty", got)
	}
	if hasLabel(fx.store.Category(CategoryProdutos).Options, "Manga") {
		t.Error("catalog holds the label of a failed creation")
	}
	if fx.flow.Pending(CategoryProdutos) != nil {
		t.Error("category still pending after failure")
	}
}

func TestCreateFlow_RejectsSecondCreationForCategory(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "42", Label: "Manga"}})

	first, err := fx.flow.Begin(FieldProduto, "Manga")
	if err != nil {
		t.Fatalf("first Begin: %v", err)
	}

	second, err := fx.flow.Begin(FieldProduto, "Uva")
	if !errors.Is(err, ErrCreationPending) {
		t.Fatalf("second Begin = %v, want ErrCreationPending", err)
	}
	if second != nil {
		t.Error("rejected Begin returned a pending creation")
	}

	got := fx.flow.Pending(CategoryProdutos)
	if got == nil || got.Label != "Manga" || got.Field != FieldProduto {
		t.Errorf("pending after rejection = %+v, want the Manga attempt", got)
	}
	if v := fx.state.Value(FieldProduto); v != "Manga" {
		t.Errorf("field = %q after rejected attempt, want Manga", v)
	}
	if calls := fx.creator.calls(); len(calls) != 0 {
		t.Errorf("creator called %v during Begin", calls)
	}

	if err := fx.flow.Resolve(context.Background(), first); err != nil {
		t.Fatalf("Resolve first: %v", err)
	}
	if got := fx.state.Value(FieldProduto); got != "42" {
		t.Errorf("field = %q, want 42", got)
	}
}

func TestCreateFlow_ExistingLabelSelectsOption(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "99", Label: "Maçã"}})
	before := fx.store.Category(CategoryProdutos).Options

	p, err := fx.flow.Begin(FieldProduto, "  maçã ")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if p != nil {
		t.Errorf("Begin started a creation for an existing label: %+v", p)
	}
	if got := fx.state.Value(FieldProduto); got != "7" {
		t.Errorf("field = %q, want existing id 7", got)
	}
	if diff := cmp.Diff(before, fx.store.Category(CategoryProdutos).Options); diff != "" {
		t.Errorf("catalog changed (-want +got):\n%s", diff)
	}
	if calls := fx.creator.calls(); len(calls) != 0 {
		t.Errorf("creator called: %v", calls)
	}
}

func TestCreateFlow_BeginRejections(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{})

	if _, err := fx.flow.Begin(FieldFornecedor, "Novo"); !errors.Is(err, ErrNotCreatable) {
		t.Errorf("Begin(fornecedor) = %v, want ErrNotCreatable", err)
	}
	if _, err := fx.flow.Begin(FieldProduto, "   "); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("Begin(blank) = %v, want ErrEmptyLabel", err)
	}
	if fx.flow.AnyPending() {
		t.Error("rejected Begin left a pending creation")
	}
}

func TestCreateFlow_UserChangeWhilePendingWins(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "42", Label: "Manga"}})

	p, err := fx.flow.Begin(FieldProduto, "Manga")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_ = fx.state.ApplyChange(FieldProduto, "8")

	if err := fx.flow.Resolve(context.Background(), p); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := fx.state.Value(FieldProduto); got != "8" {
		t.Errorf("field = %q, want the user's later choice 8", got)
	}
	if _, ok := fx.store.Lookup(CategoryProdutos, "42"); !ok {
		t.Error("created option missing from the catalog")
	}
}

func TestCreateFlow_DuplicateIDFromCreator(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "7", Label: "Manga"}})

	err := fx.flow.Create(context.Background(), FieldProduto, "Manga")
	if !errors.Is(err, ErrDuplicateOption) {
		t.Fatalf("Create = %v, want ErrDuplicateOption", err)
	}
	if got := fx.state.Value(FieldProduto); got != "" {
		t.Errorf("field = %q, want reverted", got)
	}
}

func TestCreateFlow_CreatorReturnsOptionAlreadyLoaded(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "42", Label: "Manga"}})

	p, err := fx.flow.Begin(FieldProduto, "Manga")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	// A reload brought in the product created elsewhere.
	if err := fx.store.Append(CategoryProdutos, Option{ID: "42", Label: "Manga"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := fx.flow.Resolve(context.Background(), p); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := fx.state.Value(FieldProduto); got != "42" {
		t.Errorf("field = %q, want 42", got)
	}
}

func TestCreateFlow_CompletionAfterCloseIsNoop(t *testing.T) {
	creator := &stubCreator{
		option:  Option{ID: "42", Label: "Manga"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	fx := newFlowFixture(t, creator)
	before := fx.store.Category(CategoryProdutos).Options

	p, err := fx.flow.Begin(FieldProduto, "Manga")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- fx.flow.Resolve(context.Background(), p) }()
	<-creator.started

	fx.flow.Close()
	close(creator.release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Resolve after Close = %v, want ErrClosed", err)
	}
	if diff := cmp.Diff(before, fx.store.Category(CategoryProdutos).Options); diff != "" {
		t.Errorf("catalog changed after teardown (-want +got):\n%s", diff)
	}
	if got := fx.state.Value(FieldProduto); got != "Manga" {
		t.Errorf("field = %q, want untouched Manga", got)
	}
	if _, err := fx.flow.Begin(FieldProduto, "Uva"); !errors.Is(err, ErrClosed) {
		t.Errorf("Begin after Close = %v, want ErrClosed", err)
	}
}

func TestCreateFlow_ResolveTwice(t *testing.T) {
	fx := newFlowFixture(t, &stubCreator{option: Option{ID: "42", Label: "Manga"}})

	p, _ := fx.flow.Begin(FieldProduto, "Manga")
	if err := fx.flow.Resolve(context.Background(), p); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := fx.flow.Resolve(context.Background(), p); !errors.Is(err, ErrNotPending) {
		t.Errorf("second Resolve = %v, want ErrNotPending", err)
	}
}
