// Package templates renders the batch form as templ components for HTMX.
package templates

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/JonMunkholm/lotes/internal/form"
	"github.com/a-h/templ"
)


// htmxConfig makes HTMX swap error responses too: they carry the alerts and
// the re-rendered fields.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[45]..","swap":true,"error":true},{"code":"...","swap":true}]}`

// FormView is everything needed to draw one form session.
type FormView struct {
	SessionID string
	Title     string
	Fields    []form.FieldConfig
	Alert     templ.Component // optional, shown above the fields
}

// LoadFailed reports whether any select shows a failed catalog load.
func (v FormView) LoadFailed() bool {
	return slices.ContainsFunc(v.Fields, func(f form.FieldConfig) bool { return f.OptionsFailed })
}

// fieldRow is a run of fields drawn side by side. Ungrouped fields get a
// row of their own.
type fieldRow struct {
	Grouped bool
	Fields  []form.FieldConfig
}

// rows groups consecutive fields sharing a non-zero Row.
func (v FormView) rows() []fieldRow {
	var out []fieldRow
	for i := 0; i < len(v.Fields); {
		j := i + 1
		if row := v.Fields[i].Row; row != 0 {
			for j < len(v.Fields) && v.Fields[j].Row == row {
				j++
			}
		}
		out = append(out, fieldRow{Grouped: v.Fields[i].Row != 0, Fields: v.Fields[i:j]})
		i = j
	}
	return out
}

// SessionURL is the base path of a form session.
func SessionURL(sid string) string {
	return "/lotes/" + sid
}

// FieldURL is where a field is re-rendered and its changes are posted.
func FieldURL(sid string, name form.Field) string {
	return SessionURL(sid) + "/campos/" + string(name)
}

// LabelParam names the parameter carrying the label typed for a new option.
// Controls post inside the form, so every parameter name is unique to its field.
func LabelParam(name form.Field) string { return "label_" + string(name) }

func fieldID(name form.Field) string { return "field-" + string(name) }

func fieldTarget(name form.Field) string { return "#" + fieldID(name) }

func inputID(name form.Field) string { return "input-" + string(name) }

func suggestID(name form.Field) string { return "suggest-" + string(name) }

func suggestURL(sid string, name form.Field) string {
	return SessionURL(sid) + "/sugestoes?field=" + string(name)
}

func hxVals(vals map[string]string) string {
	b, err := json.Marshal(vals)
	if err != nil {
		return ""
	}
	return string(b)
}

// selectPlaceholder is the empty option of a select, replaced while the
// catalog is unavailable.
func selectPlaceholder(f form.FieldConfig) string {
	switch {
	case f.OptionsLoading:
		return "Carregando..."
	case f.OptionsFailed:
		return "Opções indisponíveis"
	}
	return f.Placeholder
}

// orphanValue reports a value missing from the options: a label typed for
// creation, shown selected until its id lands.
func orphanValue(f form.FieldConfig) bool {
	if f.Value == "" {
		return false
	}
	return !slices.ContainsFunc(f.Options, func(o form.Option) bool { return o.ID == f.Value })
}

func inputType(f form.FieldConfig) string {
	switch f.Input {
	case form.InputNumber:
		return "number"
	case form.InputDate:
		return "date"
	}
	return "text"
}

func inputMode(f form.FieldConfig) string {
	switch f.Input {
	case form.InputNumber:
		return "numeric"
	case form.InputPrice:
		return "decimal"
	}
	return ""
}

func itoa(n int) string { return strconv.Itoa(n) }

const pageStyle = `
body{font-family:system-ui,sans-serif;background:#f5f5f4;margin:0}
.container{max-width:40rem;margin:2rem auto;background:#fff;padding:1.5rem;border-radius:.5rem}
.row{display:grid;grid-template-columns:1fr 1fr;gap:1rem}
.field{display:flex;flex-direction:column;margin-bottom:1rem}
.field label{font-weight:600;margin-bottom:.25rem}
.field input,.field select,.field textarea{padding:.5rem;border:1px solid #d6d3d1;border-radius:.25rem}
.field-error input,.field-error select,.field-error textarea{border-color:#dc2626}
.field-error-message,.create-error{color:#dc2626;font-size:.875rem;margin:.25rem 0 0}
.field-busy{opacity:.7}
.required{color:#dc2626;margin-left:.125rem}
.creatable{display:flex;flex-wrap:wrap;gap:.5rem;margin-top:.5rem}
.suggestions{list-style:none;padding:0;margin:0;width:100%}
.pending{font-style:italic;margin:0}
.alert{padding:.75rem;border-radius:.25rem;margin-bottom:1rem}
.alert-error{background:#fee2e2;color:#991b1b}
.alert-success{background:#dcfce7;color:#166534}
.actions{display:flex;gap:.5rem;justify-content:flex-end}
button.primary{background:#15803d;color:#fff;border:0;padding:.5rem 1rem;border-radius:.25rem}
button.link{background:none;border:0;color:#1d4ed8;text-decoration:underline;cursor:pointer}
`
