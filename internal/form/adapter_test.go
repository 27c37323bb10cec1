package form

import "testing"

func TestAdapters(t *testing.T) {
	tests := []struct {
		name   string
		kind   InputKind
		raw    string
		want   string
		wantOK bool
	}{
		{"text kept verbatim", InputText, " lote A ", " lote A ", true},
		{"textarea kept verbatim", InputTextArea, "linha 1\nlinha 2", "linha 1\nlinha 2", true},

		{"number digits", InputNumber, "120", "120", true},
		{"number leading zeros", InputNumber, "007", "7", true},
		{"number zero is missing", InputNumber, "0", "", true},
		{"number empty", InputNumber, "", "", true},
		{"number trims", InputNumber, " 5 ", "5", true},
		{"number rejects sign", InputNumber, "-5", "", false},
		{"number rejects decimal", InputNumber, "1.5", "", false},
		{"number rejects letters", InputNumber, "12a", "", false},

		{"date iso", InputDate, "2025-03-14", "2025-03-14", true},
		{"date empty", InputDate, "", "", true},
		{"date rejects brazilian", InputDate, "14/03/2025", "", false},
		{"date rejects invalid day", InputDate, "2025-02-30", "", false},

		{"select id", InputSelect, " 42 ", "42", true},
		{"select cleared", InputSelect, "", "", true},

		{"price formatted", InputPrice, "1234,5", "1.234,50", true},
		{"price with prefix", InputPrice, "R$ 12", "12,00", true},
		{"price dot decimal", InputPrice, "9.99", "9,99", true},
		{"price empty", InputPrice, " ", "", true},
		{"price rejects letters", InputPrice, "doze", "", false},

		{"unknown kind as text", InputKind("color"), "#fff", "#fff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, ok := AdapterFor(tt.kind)(FieldObs, tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if ch.Field != FieldObs {
				t.Errorf("Field = %q, want %q", ch.Field, FieldObs)
			}
			if ch.Raw != tt.want {
				t.Errorf("Raw = %q, want %q", ch.Raw, tt.want)
			}
		})
	}
}
