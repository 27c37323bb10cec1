package form

import (
	"context"
	"errors"
	"fmt"
)

// Category names one option list. Values match the keys of the bundled
// options response.
type Category string

const (
	CategoryStatus         Category = "status"
	CategoryTipos          Category = "tipos"
	CategoryProdutos       Category = "produtos"
	CategoryFornecedores   Category = "fornecedores"
	CategoryUnidades       Category = "unidades"
	CategoryClassificacoes Category = "classificacoes"
	CategoryLocais         Category = "locaisArmazenamento"
)

// Option is one selectable entry. Ids are unique within a category only.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Status is the load status of the option catalog.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Bundle is the result of one bundled fetch, keyed by category, each list in
// display order.
type Bundle map[Category][]Option

// Fetcher performs the bundled option fetch.
type Fetcher interface {
	FetchOptions(ctx context.Context) (Bundle, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (Bundle, error)

func (f FetcherFunc) FetchOptions(ctx context.Context) (Bundle, error) { return f(ctx) }

// Creator creates a new entity from a typed label. The returned option
// carries the assigned id and the canonical label, which may differ from the
// typed text.
type Creator interface {
	CreateOption(ctx context.Context, category Category, label string) (Option, error)
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, category Category, label string) (Option, error)

func (f CreatorFunc) CreateOption(ctx context.Context, category Category, label string) (Option, error) {
	return f(ctx, category, label)
}

// Submitter receives the final values of a valid form and returns the id of
// the registered record.
type Submitter interface {
	SubmitBatch(ctx context.Context, values Values) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, values Values) (string, error)

func (f SubmitterFunc) SubmitBatch(ctx context.Context, values Values) (string, error) {
	return f(ctx, values)
}

var (
	// ErrClosed is returned by every store once its session was torn down.
	ErrClosed = errors.New("form closed")
	// ErrDuplicateOption reports an append whose id is already in the category.
	ErrDuplicateOption = errors.New("duplicate option id")
	// ErrInvalidBundle reports a fetch result that cannot be applied.
	ErrInvalidBundle = errors.New("invalid options bundle")
	// ErrUnknownField is returned for a field that is not part of the form.
	ErrUnknownField = errors.New("unknown field")
	// ErrRejectedInput is returned when an adapter refuses a raw input value.
	ErrRejectedInput = errors.New("input rejected")
	// ErrNotCreatable is returned when creation is requested for a field that
	// does not accept new options.
	ErrNotCreatable = errors.New("field does not accept new options")
	// ErrEmptyLabel is returned when a creation label is blank.
	ErrEmptyLabel = errors.New("empty label")
	// ErrCreationPending is returned when a category already has a creation in flight.
	ErrCreationPending = errors.New("creation already pending")
	// ErrNotPending is returned by Resolve for a creation that is no longer in flight.
	ErrNotPending = errors.New("creation not pending")
	// ErrIncomplete is returned by Submit when required fields are empty.
	ErrIncomplete = errors.New("required fields missing")
)

// LoadError is the failure of a bundled fetch. It is kept as the error
// detail of every category until the next successful load.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "load options: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CreationError is the failure of one creation attempt.
type CreationError struct {
	Category Category
	Label    string
	Err      error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create %s %q: %v", e.Category, e.Label, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
