package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/lotes/internal/logging"
)

// Default timeouts for the work a session starts on its own.
const (
	DefaultLoadTimeout   = 10 * time.Second
	DefaultCreateTimeout = 10 * time.Second
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Fetcher       Fetcher
	Creator       Creator
	Submitter     Submitter
	Layout        *Layout // nil means DefaultLayout
	Logger        *slog.Logger
	LoadTimeout   time.Duration
	CreateTimeout time.Duration
}

// Session is one open batch form.
type Session struct {
	ID string

	layout    *Layout
	store     *OptionStore
	state     *State
	flow      *CreateFlow
	submitter Submitter
	logger    *slog.Logger

	loadTimeout   time.Duration
	createTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	lastSeen   time.Time
	closed     bool
	createErrs map[Field]error
}

// NewSession builds the stores of a form. Nothing is fetched until Start or Load.
func NewSession(id string, deps Deps) *Session {
	layout := deps.Layout
	if layout == nil {
		layout = DefaultLayout()
	}
	logger := logging.ForSession(deps.Logger, id)

	store := NewOptionStore(deps.Fetcher, layout.Categories(), logger)
	state := NewState(layout.Names(), layout.Required())
	flow := NewCreateFlow(store, state, deps.Creator, layout.Creatable(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:            id,
		layout:        layout,
		store:         store,
		state:         state,
		flow:          flow,
		submitter:     deps.Submitter,
		logger:        logger,
		loadTimeout:   deps.LoadTimeout,
		createTimeout: deps.CreateTimeout,
		ctx:           ctx,
		cancel:        cancel,
		lastSeen:      time.Now(),
		createErrs:    make(map[Field]error),
	}
	if s.loadTimeout <= 0 {
		s.loadTimeout = DefaultLoadTimeout
	}
	if s.createTimeout <= 0 {
		s.createTimeout = DefaultCreateTimeout
	}
	return s
}

// Store returns the option store of the session.
func (s *Session) Store() *OptionStore { return s.store }

// State returns the form state of the session.
func (s *Session) State() *State { return s.state }

// Flow returns the creation flow of the session.
func (s *Session) Flow() *CreateFlow { return s.flow }

// Layout returns the field layout of the session.
func (s *Session) Layout() *Layout { return s.layout }

// Start begins loading the option catalogs in the background.
func (s *Session) Start() {
	s.LoadAsync()
}

// LoadAsync starts a bundled fetch without waiting for it. It also serves as
// retry after a failed load.
func (s *Session) LoadAsync() {
	s.goAsync(func(ctx context.Context) {
		if err := s.Load(ctx); err != nil && !errors.Is(err, ErrClosed) {
			s.logger.Debug("background load ended", "error", err)
		}
	})
}

// Load fetches the option catalogs and waits for the result.
func (s *Session) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()
	return s.store.Load(ctx)
}

// Change applies a raw input value to field through the field's adapter.
// A value the adapter refuses returns ErrRejectedInput and changes nothing.
// Once the catalogs are ready, a select only takes ids of its category; typed
// labels reach a select through Create.
func (s *Session) Change(field Field, raw string) error {
	def, ok := s.layout.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.Touch()

	ch, ok := AdapterFor(def.Input)(field, raw)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRejectedInput, field)
	}
	if def.Input == InputSelect && ch.Raw != "" {
		if status, _ := s.store.Status(); status == StatusReady {
			if _, found := s.store.Lookup(def.Category, ch.Raw); !found {
				return fmt.Errorf("%w: %s has no option %q", ErrRejectedInput, def.Category, ch.Raw)
			}
		}
	}
	if def.Input == InputPrice {
		return s.state.ApplyPriceChange(ch.Raw)
	}
	return s.state.ApplyChange(ch.Field, ch.Raw)
}

// ChangePrice applies a value from the price formatter.
func (s *Session) ChangePrice(raw string) error {
	return s.Change(FieldPreco, raw)
}

// Create selects or creates the option typed into field and waits for the
// creation to resolve.
func (s *Session) Create(ctx context.Context, field Field, label string) error {
	s.Touch()
	p, err := s.flow.Begin(field, label)
	if err != nil {
		return err
	}
	s.setCreateErr(field, nil)
	if p == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.createTimeout)
	defer cancel()

	err = s.flow.Resolve(ctx, p)
	s.setCreateErr(field, err)
	return err
}

// CreateAsync starts a creation and returns once it is pending. Rejections
// (not creatable, blank label, creation already pending) are returned
// synchronously; the creation result is reported through CreateError and
// the field's configuration. The creator sees the values of ctx, such as the
// client address, but runs for as long as the session does.
func (s *Session) CreateAsync(ctx context.Context, field Field, label string) error {
	s.Touch()
	p, err := s.flow.Begin(field, label)
	if err != nil {
		return err
	}
	s.setCreateErr(field, nil)
	if p == nil {
		return nil
	}

	values := ctx
	s.goAsync(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(valuesFrom{Context: ctx, values: values}, s.createTimeout)
		defer cancel()
		s.setCreateErr(field, s.flow.Resolve(ctx, p))
	})
	return nil
}

// CreateError returns the failure of the last creation on field, if any.
func (s *Session) CreateError(field Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createErrs[field]
}

func (s *Session) setCreateErr(field Field, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || errors.Is(err, ErrClosed) {
		return
	}
	if err == nil {
		delete(s.createErrs, field)
		return
	}
	s.createErrs[field] = err
}

// Suggest returns up to n existing options close to label in the category of
// field.
func (s *Session) Suggest(field Field, label string, n int) []Option {
	def, ok := s.layout.Field(field)
	if !ok || def.Category == "" {
		return nil
	}
	return s.store.Similar(def.Category, label, n)
}

// fieldsReporter is implemented by submit errors that name invalid fields.
type fieldsReporter interface {
	Fields() []string
}

// Submit validates the required fields, commits the resulting error flags and
// hands the values to the submitter. The form is cleared after a successful
// submit. Submit refuses while a creation is pending.
func (s *Session) Submit(ctx context.Context) (string, error) {
	s.Touch()

	valid, errs := s.state.Validate(s.layout.Required())
	s.state.CommitErrors(errs)
	if !valid {
		return "", ErrIncomplete
	}
	if s.flow.AnyPending() {
		return "", ErrCreationPending
	}
	if s.submitter == nil {
		return "", errors.New("no submitter configured")
	}

	id, err := s.submitter.SubmitBatch(ctx, s.state.Values())
	if err != nil {
		var fr fieldsReporter
		if errors.As(err, &fr) {
			flags := make(FieldErrors)
			for _, f := range fr.Fields() {
				flags[Field(f)] = true
			}
			s.state.CommitErrors(flags)
		}
		return "", err
	}

	s.logger.Info("batch submitted", "id", id)
	s.state.Reset()
	return id, nil
}

// Fields returns the configuration of every field in layout order.
func (s *Session) Fields() []FieldConfig {
	out := make([]FieldConfig, len(s.layout.Fields))
	for i, def := range s.layout.Fields {
		out[i] = s.fieldConfig(def)
	}
	return out
}

// FieldConfig returns the configuration of one field.
func (s *Session) FieldConfig(field Field) (FieldConfig, bool) {
	def, ok := s.layout.Field(field)
	if !ok {
		return FieldConfig{}, false
	}
	return s.fieldConfig(def), true
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down. In-flight work is cancelled and its eventual
// completion leaves the discarded stores alone.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.flow.Close()
	s.store.Close()
	s.state.Close()
	s.logger.Debug("session closed")
}

// Wait blocks until background work started by the session has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) goAsync(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// valuesFrom keeps the deadline and cancellation of Context while looking up
// values in values first.
type valuesFrom struct {
	context.Context
	values context.Context
}

func (c valuesFrom) Value(key any) any {
	if v := c.values.Value(key); v != nil {
		return v
	}
	return c.Context.Value(key)
}
