package form

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Field is the name of a form field. Names match the batch submission keys.
type Field string

const (
	FieldProduto         Field = "produto"
	FieldFornecedor      Field = "fornecedor"
	FieldQuantMax        Field = "quant_max"
	FieldUnidade         Field = "unidade"
	FieldPreco           Field = "preco"
	FieldTipo            Field = "tipo"
	FieldDtColheita      Field = "dt_colheita"
	FieldDtValidade      Field = "dt_validade"
	FieldClassificacao   Field = "classificacao"
	FieldLocalArmazenado Field = "localArmazenado"
	FieldObs             Field = "obs"
)

// Values holds the current value of every field. All values are strings,
// including numeric and date fields; "" means missing.
type Values map[Field]string

// FieldErrors holds one error flag per tracked field.
type FieldErrors map[Field]bool

// State holds the values and error flags of one form.
//
// ApplyChange is the single entry point that writes values; it clears the
// error flag of a field that becomes non-empty. Flags are only set by
// committing the result of Validate.
type State struct {
	mu      sync.Mutex
	values  Values
	errors  FieldErrors
	tracked []Field
	closed  bool
}

// NewState creates a state for fields, all empty. tracked is the closed set
// of fields that carry an error flag.
func NewState(fields, tracked []Field) *State {
	s := &State{
		values:  make(Values, len(fields)),
		errors:  make(FieldErrors, len(tracked)),
		tracked: slices.Clone(tracked),
	}
	for _, f := range fields {
		s.values[f] = ""
	}
	for _, f := range tracked {
		s.errors[f] = false
	}
	return s
}

// ApplyChange overwrites the value of field. A non-empty value clears the
// field's error flag; an empty value leaves the flag as it was.
func (s *State) ApplyChange(field Field, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(field, raw)
}

// ApplyPriceChange applies a value produced by the price formatter.
func (s *State) ApplyPriceChange(raw string) error {
	return s.ApplyChange(FieldPreco, raw)
}

// ApplyChangeIf applies raw only while field still holds expect. It reports
// whether the change was applied.
func (s *State) ApplyChangeIf(field Field, expect, raw string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}
	cur, ok := s.values[field]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if cur != expect {
		return false, nil
	}
	if err := s.apply(field, raw); err != nil {
		return false, err
	}
	return true, nil
}

func (s *State) apply(field Field, raw string) error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.values[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	s.values[field] = raw
	if raw != "" {
		if _, tracked := s.errors[field]; tracked {
			s.errors[field] = false
		}
	}
	return nil
}

// Validate reports whether every required field is non-empty and returns the
// error flags that result. Tracked fields outside required are reported as
// valid; untracked fields in required are ignored. State is not modified.
func (s *State) Validate(required []Field) (bool, FieldErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(FieldErrors, len(s.tracked))
	for _, f := range s.tracked {
		next[f] = false
	}

	valid := true
	for _, f := range required {
		if _, tracked := next[f]; !tracked {
			continue
		}
		if s.values[f] == "" {
			next[f] = true
			valid = false
		}
	}
	return valid, next
}

// CommitErrors replaces the error flags of the tracked fields present in errs.
func (s *State) CommitErrors(errs FieldErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for f, v := range errs {
		if _, tracked := s.errors[f]; tracked {
			s.errors[f] = v
		}
	}
}

// Value returns the current value of field.
func (s *State) Value(field Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[field]
}

// Error returns the error flag of field.
func (s *State) Error(field Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[field]
}

// Values returns a copy of all values.
func (s *State) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// Errors returns a copy of all error flags.
func (s *State) Errors() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.errors)
}

// Reset empties every value and clears every flag.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for f := range s.values {
		s.values[f] = ""
	}
	for f := range s.errors {
		s.errors[f] = false
	}
}

// Close discards the state. Later changes return ErrClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
