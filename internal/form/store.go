package form

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CategoryView is a snapshot of one category. Options is a copy.
type CategoryView struct {
	Options []Option
	Status  Status
	Err     error
}

type appendRecord struct {
	category Category
	option   Option
}

// OptionStore caches the option catalogs of one form.
//
// The catalog status is shared by all categories: Load either makes every
// category ready or fails them all. Append is the only partial update.
type OptionStore struct {
	fetcher  Fetcher
	required []Category
	logger   *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	options  map[Category][]Option
	status   Status
	err      error
	loading  bool
	appended []appendRecord // appends made while a fetch is in flight
	closed   bool
}

// NewOptionStore creates an empty, pending store. A fetch result missing any
// of the required categories is rejected.
func NewOptionStore(fetcher Fetcher, required []Category, logger *slog.Logger) *OptionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &OptionStore{
		fetcher:  fetcher,
		required: slices.Clone(required),
		logger:   logger,
		options:  make(map[Category][]Option),
		status:   StatusPending,
	}
}

// Load runs the bundled fetch. Calls made while a fetch is in flight share
// its result instead of starting another one. Calling Load after a previous
// load completed fetches again.
//
// The required categories are the ones a select or creatable field of the
// layout is bound to. A bundle missing any of them, or repeating an id
// inside one, fails the whole load: every category is left empty and
// StatusFailed, even the ones that arrived intact.
func (s *OptionStore) Load(ctx context.Context) error {
	_, err, shared := s.group.Do("load", func() (any, error) {
		return nil, s.load(ctx)
	})
	if shared {
		s.logger.Debug("options load shared with in-flight fetch")
	}
	return err
}

func (s *OptionStore) load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.status = StatusPending
	s.err = nil
	s.loading = true
	s.appended = nil
	s.mu.Unlock()

	bundle, err := s.fetcher.FetchOptions(ctx)
	if err == nil {
		err = s.checkBundle(bundle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if s.closed {
		return ErrClosed
	}

	if err != nil {
		s.status = StatusFailed
		s.err = &LoadError{Err: err}
		s.options = make(map[Category][]Option)
		s.appended = nil
		s.logger.Warn("options load failed", "error", err)
		return s.err
	}

	next := make(map[Category][]Option, len(bundle))
	for cat, opts := range bundle {
		next[cat] = slices.Clone(opts)
	}
	for _, a := range s.appended {
		if !containsID(next[a.category], a.option.ID) {
			next[a.category] = append(next[a.category], a.option)
		}
	}
	s.appended = nil
	s.options = next
	s.status = StatusReady

	s.logger.Debug("options loaded", "categories", len(next))
	return nil
}

// checkBundle rejects bundles that lack a required category or repeat an id.
func (s *OptionStore) checkBundle(b Bundle) error {
	for _, cat := range s.required {
		if _, ok := b[cat]; !ok {
			return fmt.Errorf("%w: missing category %q", ErrInvalidBundle, cat)
		}
	}
	for cat, opts := range b {
		seen := make(map[string]bool, len(opts))
		for _, o := range opts {
			if seen[o.ID] {
				return fmt.Errorf("%w: category %q repeats id %q", ErrInvalidBundle, cat, o.ID)
			}
			seen[o.ID] = true
		}
	}
	return nil
}

// Category returns the current options and status of a category. It never
// blocks on a fetch; before the first load completes it reports an empty,
// pending category.
func (s *OptionStore) Category(cat Category) CategoryView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return CategoryView{
		Options: slices.Clone(s.options[cat]),
		Status:  s.status,
		Err:     s.err,
	}
}

// Status returns the catalog status and its error detail.
func (s *OptionStore) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Append adds opt at the end of the category. An id already present in the
// category is rejected with ErrDuplicateOption.
func (s *OptionStore) Append(cat Category, opt Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if containsID(s.options[cat], opt.ID) {
		s.logger.Error("duplicate option id appended",
			"category", cat,
			"id", opt.ID,
			"label", opt.Label,
		)
		return fmt.Errorf("%w: %s id %q", ErrDuplicateOption, cat, opt.ID)
	}

	s.options[cat] = append(s.options[cat], opt)
	if s.loading {
		s.appended = append(s.appended, appendRecord{category: cat, option: opt})
	}
	return nil
}

// Lookup returns the option with id in the category.
func (s *OptionStore) Lookup(cat Category, id string) (Option, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.options[cat] {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Find returns the option whose label equals label, ignoring case, accents
// and repeated whitespace.
func (s *OptionStore) Find(cat Category, label string) (Option, bool) {
	key := foldLabel(label)
	if key == "" {
		return Option{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.options[cat] {
		if foldLabel(o.Label) == key {
			return o, true
		}
	}
	return Option{}, false
}

// Similar returns up to n options whose labels are close to label, closest
// first. Exact matches are included.
func (s *OptionStore) Similar(cat Category, label string, n int) []Option {
	s.mu.RLock()
	opts := slices.Clone(s.options[cat])
	s.mu.RUnlock()

	return rankSimilar(opts, label, n)
}

// Close discards the catalog. Later loads and appends return ErrClosed.
func (s *OptionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.options = make(map[Category][]Option)
	s.appended = nil
}

func containsID(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
