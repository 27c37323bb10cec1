package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/lotes/internal/form"
	"github.com/a-h/templ"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestField_EscapesUserText(t *testing.T) {
	f := form.FieldConfig{
		Name:         form.FieldProduto,
		Label:        "Produto",
		Input:        form.InputSelect,
		Select:       true,
		Value:        "9",
		DisplayValue: `<script>alert(1)</script>`,
		Options:      []form.Option{{ID: "1", Label: "Pão & Mel"}},
	}

	got := renderString(t, Field("s1", f))
	if strings.Contains(got, "<script>") {
		t.Errorf("label not escaped: %s", got)
	}
	if !strings.Contains(got, "Pão &amp; Mel") {
		t.Errorf("option label not escaped: %s", got)
	}
	if !strings.Contains(got, `<option value="9" selected>&lt;script&gt;`) {
		t.Errorf("optimistic value not rendered as selected: %s", got)
	}
}

func TestField_States(t *testing.T) {
	tests := []struct {
		name    string
		cfg     form.FieldConfig
		want    []string
		notWant []string
	}{
		{
			name:    "loading select polls",
			cfg:     form.FieldConfig{Name: "tipo", Input: form.InputSelect, Select: true, OptionsLoading: true},
			want:    []string{`hx-trigger="every 500ms"`, "Carregando...", " disabled"},
			notWant: []string{"field-error"},
		},
		{
			name:    "failed select",
			cfg:     form.FieldConfig{Name: "tipo", Input: form.InputSelect, Select: true, OptionsFailed: true},
			want:    []string{"Opções indisponíveis"},
			notWant: []string{"every 500ms"},
		},
		{
			name: "required with error",
			cfg:  form.FieldConfig{Name: "quant_max", Label: "Capacidade", Input: form.InputNumber, Required: true, Error: true, Min: 1},
			want: []string{`type="number"`, `min="1"`, "field-error", "Campo obrigatório", `class="required"`},
		},
		{
			name: "pending creation",
			cfg: form.FieldConfig{Name: "produto", Input: form.InputSelect, Select: true, Creatable: true,
				Pending: true, Value: "Manga", DisplayValue: "Manga"},
			want:    []string{"Cadastrando “Manga”", "every 500ms"},
			notWant: []string{"Adicionar"},
		},
		{
			name: "creatable idle",
			cfg:  form.FieldConfig{Name: "produto", Input: form.InputSelect, Select: true, Creatable: true, CreateError: "falhou"},
			want: []string{"Adicionar", "/lotes/s1/criar", "/lotes/s1/sugestoes?field=produto", "falhou"},
		},
		{
			name: "textarea",
			cfg:  form.FieldConfig{Name: "obs", Input: form.InputTextArea, TextArea: true, Rows: 2, Value: "frágil"},
			want: []string{`<textarea`, `rows="2"`, ">frágil</textarea>"},
		},
		{
			name: "price",
			cfg:  form.FieldConfig{Name: "preco", Input: form.InputPrice, PriceFormatted: true, Value: "1.234,50"},
			want: []string{`inputmode="decimal"`, `value="1.234,50"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderString(t, Field("s1", tt.cfg))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in %s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in %s", w, got)
				}
			}
		})
	}
}

func TestFormBody_GroupsRows(t *testing.T) {
	v := FormView{
		SessionID: "s1",
		Fields: []form.FieldConfig{
			{Name: "produto", Input: form.InputText},
			{Name: "quant_max", Input: form.InputNumber, Row: 1},
			{Name: "unidade", Input: form.InputText, Row: 1},
			{Name: "obs", Input: form.InputTextArea, TextArea: true},
		},
	}

	got := renderString(t, FormBody(v))
	if n := strings.Count(got, `<div class="row">`); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
	row := got[strings.Index(got, `<div class="row">`):]
	if !strings.Contains(row, `id="field-quant_max"`) || !strings.Contains(row, `id="field-unidade"`) {
		t.Errorf("row does not hold its fields: %s", row)
	}
	if strings.Contains(got, "Tentar novamente") {
		t.Error("retry offered without a failed load")
	}
}

func TestSuggestions_Empty(t *testing.T) {
	if got := renderString(t, Suggestions("s1", "produto", nil)); got != "" {
		t.Errorf("Suggestions(nil) = %q, want empty", got)
	}
}

func TestAlerts(t *testing.T) {
	got := renderString(t, ErrorAlert("Falha <grave>", "", "DB004"))
	if !strings.Contains(got, "Falha &lt;grave&gt;") || !strings.Contains(got, "Código: DB004") {
		t.Errorf("ErrorAlert = %s", got)
	}
	if strings.Contains(got, "alert-action") {
		t.Errorf("empty action rendered: %s", got)
	}

	if got := renderString(t, SuccessAlert("12")); !strings.Contains(got, "Lote 12 cadastrado com sucesso.") {
		t.Errorf("SuccessAlert = %s", got)
	}
}

func TestFormPage(t *testing.T) {
	v := FormView{
		SessionID: "s1",
		Title:     "Cadastro de Lote",
		Fields:    []form.FieldConfig{{Name: "tipo", Input: form.InputSelect, Select: true, OptionsFailed: true}},
		Alert:     ErrorAlert("Opções indisponíveis", "", ""),
	}

	got := renderString(t, FormPage(v))
	for _, want := range []string{
		"<title>Cadastro de Lote</title>",
		`name="htmx-config"`,
		"htmx.org@2.0.4",
		`<div id="alerts"><div class="alert alert-error"`,
		`hx-post="/lotes/s1/opcoes"`,
		`<form hx-post="/lotes/s1"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %s", want, got)
		}
	}
}

func TestCreatable_LabelParamIsPerField(t *testing.T) {
	f := form.FieldConfig{Name: "produto", Input: form.InputSelect, Select: true, Creatable: true}
	got := renderString(t, Field("s1", f))
	if !strings.Contains(got, `name="label_produto"`) || !strings.Contains(got, `name="produto"`) {
		t.Errorf("controls not named after their field: %s", got)
	}
}
