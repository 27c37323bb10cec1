package form

import "context"

// FieldConfig is everything a renderer needs to draw one field: its
// declaration, current value and error, the bound options with their load
// status, and the callbacks that feed user input back into the session.
// Renderers route input events through OnChange and creation requests
// through OnCreate.
type FieldConfig struct {
	Name           Field     `json:"name"`
	Label          string    `json:"label"`
	Placeholder    string    `json:"placeholder,omitempty"`
	Input          InputKind `json:"input"`
	Select         bool      `json:"select"`
	Creatable      bool      `json:"creatable"`
	TextArea       bool      `json:"textArea"`
	PriceFormatted bool      `json:"priceFormatted"`
	Required       bool      `json:"required"`
	Rows           int       `json:"rows,omitempty"`
	Min            int       `json:"min,omitempty"`
	Row            int       `json:"row,omitempty"`

	Value        string `json:"value"`
	DisplayValue string `json:"displayValue"`
	Error        bool   `json:"error"`

	Category       Category `json:"category,omitempty"`
	Options        []Option `json:"options,omitempty"`
	OptionsLoading bool     `json:"optionsLoading"`
	OptionsFailed  bool     `json:"optionsFailed"`
	OptionsError   string   `json:"optionsError,omitempty"`

	Pending     bool   `json:"pending"`
	CreateError string `json:"createError,omitempty"`

	OnChange func(raw string) error                        `json:"-"`
	OnCreate func(ctx context.Context, label string) error `json:"-"`
}

// Busy reports whether the field waits on a fetch or a creation.
func (c FieldConfig) Busy() bool {
	return c.Pending || (c.Select && c.OptionsLoading)
}

func (s *Session) fieldConfig(def FieldDef) FieldConfig {
	name := def.Name
	cfg := FieldConfig{
		Name:           name,
		Label:          def.Label,
		Placeholder:    def.Placeholder,
		Input:          def.Input,
		Select:         def.Input == InputSelect,
		Creatable:      def.Creatable,
		TextArea:       def.Input == InputTextArea,
		PriceFormatted: def.Input == InputPrice,
		Required:       def.Required,
		Rows:           def.Rows,
		Min:            def.Min,
		Row:            def.Row,
		Value:          s.state.Value(name),
		Error:          s.state.Error(name),
		Category:       def.Category,
	}
	cfg.DisplayValue = cfg.Value

	if cfg.Select {
		view := s.store.Category(def.Category)
		cfg.Options = view.Options
		cfg.OptionsLoading = view.Status == StatusPending
		cfg.OptionsFailed = view.Status == StatusFailed
		if view.Err != nil {
			cfg.OptionsError = view.Err.Error()
		}
		if opt, ok := s.store.Lookup(def.Category, cfg.Value); ok {
			cfg.DisplayValue = opt.Label
		}
	}

	if def.Creatable {
		cfg.Pending = s.flow.PendingFor(name) != nil
		if err := s.CreateError(name); err != nil {
			cfg.CreateError = err.Error()
		}
		cfg.OnCreate = func(ctx context.Context, label string) error { return s.CreateAsync(ctx, name, label) }
	}

	cfg.OnChange = func(raw string) error { return s.Change(name, raw) }
	return cfg
}
