package form

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayoutYAML []byte

// FieldDef declares one field of the form.
type FieldDef struct {
	Name        Field     `yaml:"name"`
	Label       string    `yaml:"label"`
	Input       InputKind `yaml:"input"`
	Category    Category  `yaml:"category,omitempty"`
	Creatable   bool      `yaml:"creatable,omitempty"`
	Required    bool      `yaml:"required,omitempty"`
	Placeholder string    `yaml:"placeholder,omitempty"`
	Rows        int       `yaml:"rows,omitempty"`
	Min         int       `yaml:"min,omitempty"`
	Row         int       `yaml:"row,omitempty"` // fields sharing a non-zero row render side by side
}

// Layout is the ordered field list of the form.
type Layout struct {
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`

	index map[Field]int
}

// ParseLayout decodes and checks a YAML layout.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.init(); err != nil {
		return nil, err
	}
	return &l, nil
}

var defaultLayout = func() *Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic(err)
	}
	return l
}()

// DefaultLayout returns the batch registration layout. It must not be modified.
func DefaultLayout() *Layout {
	return defaultLayout
}

func (l *Layout) init() error {
	if len(l.Fields) == 0 {
		return errors.New("layout has no fields")
	}

	var errs []error
	l.index = make(map[Field]int, len(l.Fields))
	for i, f := range l.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field %d: missing name", i))
			continue
		}
		if _, dup := l.index[f.Name]; dup {
			errs = append(errs, fmt.Errorf("field %s: declared twice", f.Name))
		}
		l.index[f.Name] = i

		if !f.Input.Valid() {
			errs = append(errs, fmt.Errorf("field %s: unknown input %q", f.Name, f.Input))
		}
		if f.Input == InputSelect && f.Category == "" {
			errs = append(errs, fmt.Errorf("field %s: select without category", f.Name))
		}
		if f.Input != InputSelect && f.Category != "" {
			errs = append(errs, fmt.Errorf("field %s: category on a %s input", f.Name, f.Input))
		}
		if f.Creatable && f.Input != InputSelect {
			errs = append(errs, fmt.Errorf("field %s: only selects can be creatable", f.Name))
		}
	}
	return errors.Join(errs...)
}

// Field returns the definition of name.
func (l *Layout) Field(name Field) (FieldDef, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldDef{}, false
	}
	return l.Fields[i], true
}

// Names returns every field name in layout order.
func (l *Layout) Names() []Field {
	out := make([]Field, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Name
	}
	return out
}

// Required returns the required fields in layout order.
func (l *Layout) Required() []Field {
	var out []Field
	for _, f := range l.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Categories returns the categories bound to select fields, without repeats.
func (l *Layout) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	for _, f := range l.Fields {
		if f.Category != "" && !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	return out
}

// Creatable maps each creatable field to its category.
func (l *Layout) Creatable() map[Field]Category {
	out := make(map[Field]Category)
	for _, f := range l.Fields {
		if f.Creatable {
			out[f.Name] = f.Category
		}
	}
	return out
}
