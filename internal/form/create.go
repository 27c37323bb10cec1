package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// creationState is the state of one category in the creation flow: either
// idle or *Pending.
type creationState interface {
	creationState()
}

type idle struct{}

func (idle) creationState() {}

// Pending is a creation in flight. The field holds Label until it resolves.
type Pending struct {
	Category Category
	Field    Field
	Label    string
	Started  time.Time
}

func (*Pending) creationState() {}

// CreateFlow turns a typed label into a new selected option.
//
// Lock order: the flow lock is taken before the store and state locks; the
// stores never call back into the flow.
type CreateFlow struct {
	store     *OptionStore
	state     *State
	creator   Creator
	creatable map[Field]Category
	logger    *slog.Logger

	mu     sync.Mutex
	states map[Category]creationState
	closed bool
}

// NewCreateFlow creates a flow over the given stores. creatable maps each
// field that accepts new options to its category.
func NewCreateFlow(store *OptionStore, state *State, creator Creator, creatable map[Field]Category, logger *slog.Logger) *CreateFlow {
	if logger == nil {
		logger = slog.Default()
	}
	states := make(map[Category]creationState, len(creatable))
	cats := make(map[Field]Category, len(creatable))
	for f, c := range creatable {
		cats[f] = c
		states[c] = idle{}
	}
	return &CreateFlow{
		store:     store,
		state:     state,
		creator:   creator,
		creatable: cats,
		logger:    logger,
		states:    states,
	}
}

// Begin starts a creation for field. It is synchronous and never calls the
// creator.
//
// A label matching an existing option selects that option and returns a nil
// Pending. Otherwise the typed label is applied to the field and the category
// becomes pending until Resolve. A second Begin for a pending category is
// rejected with ErrCreationPending and leaves the first attempt untouched.
func (f *CreateFlow) Begin(field Field, label string) (*Pending, error) {
	cat, ok := f.creatable[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCreatable, field)
	}
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return nil, ErrEmptyLabel
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}
	if p, busy := f.states[cat].(*Pending); busy {
		return nil, fmt.Errorf("%w: %s %q", ErrCreationPending, cat, p.Label)
	}

	if opt, found := f.store.Find(cat, label); found {
		return nil, f.state.ApplyChange(field, opt.ID)
	}

	if err := f.state.ApplyChange(field, label); err != nil {
		return nil, err
	}
	p := &Pending{Category: cat, Field: field, Label: label, Started: time.Now()}
	f.states[cat] = p
	return p, nil
}

// Resolve runs the creator for p and lands the result.
//
// On success the option is appended to the catalog and its id replaces the
// typed label in the field. On failure the field reverts to empty and a
// *CreationError is returned. Either way the field is only written while it
// still holds the typed label, and the category returns to idle. After Close
// the result is dropped and ErrClosed is returned.
func (f *CreateFlow) Resolve(ctx context.Context, p *Pending) error {
	if p == nil {
		return nil
	}

	f.mu.Lock()
	current := f.states[p.Category]
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if current != creationState(p) {
		return fmt.Errorf("%w: %s", ErrNotPending, p.Category)
	}

	opt, err := f.creator.CreateOption(ctx, p.Category, p.Label)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.states[p.Category] != creationState(p) {
		return fmt.Errorf("%w: %s", ErrNotPending, p.Category)
	}
	f.states[p.Category] = idle{}

	if err == nil {
		err = f.land(p, opt)
	}
	if err != nil {
		if _, rerr := f.state.ApplyChangeIf(p.Field, p.Label, ""); rerr != nil {
			f.logger.Warn("revert after failed creation", "field", p.Field, "error", rerr)
		}
		f.logger.Info("option creation failed",
			"category", p.Category,
			"label", p.Label,
			"error", err,
		)
		return &CreationError{Category: p.Category, Label: p.Label, Err: err}
	}

	f.logger.Info("option created",
		"category", p.Category,
		"id", opt.ID,
		"label", opt.Label,
		"duration_ms", time.Since(p.Started).Milliseconds(),
	)
	return nil
}

// land appends opt and selects it. A creator that answers with an option the
// catalog already holds under the same label (another session created it and
// a reload brought it in) selects the existing entry.
func (f *CreateFlow) land(p *Pending, opt Option) error {
	if opt.ID == "" {
		return errors.New("creator returned an empty id")
	}
	if err := f.store.Append(p.Category, opt); err != nil {
		existing, found := f.store.Lookup(p.Category, opt.ID)
		if !errors.Is(err, ErrDuplicateOption) || !found || foldLabel(existing.Label) != foldLabel(opt.Label) {
			return err
		}
	}
	_, err := f.state.ApplyChangeIf(p.Field, p.Label, opt.ID)
	return err
}

// Create selects an existing option matching label or creates a new one,
// blocking until the creation resolves.
func (f *CreateFlow) Create(ctx context.Context, field Field, label string) error {
	p, err := f.Begin(field, label)
	if err != nil || p == nil {
		return err
	}
	return f.Resolve(ctx, p)
}

// Pending returns the creation in flight for cat, or nil when idle.
func (f *CreateFlow) Pending(cat Category) *Pending {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.states[cat].(*Pending); ok {
		cp := *p
		return &cp
	}
	return nil
}

// PendingFor returns the creation in flight for field, or nil.
func (f *CreateFlow) PendingFor(field Field) *Pending {
	cat, ok := f.creatable[field]
	if !ok {
		return nil
	}
	return f.Pending(cat)
}

// AnyPending reports whether some category has a creation in flight.
func (f *CreateFlow) AnyPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, st := range f.states {
		if _, ok := st.(*Pending); ok {
			return true
		}
	}
	return false
}

// Creatable reports whether field accepts new options, and its category.
func (f *CreateFlow) Creatable(field Field) (Category, bool) {
	cat, ok := f.creatable[field]
	return cat, ok
}

// Close drops every pending creation. Later completions are no-ops.
func (f *CreateFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for c := range f.states {
		f.states[c] = idle{}
	}
}
