package core

// validation.go checks a submitted batch before insertion.
//
// Validation happens at two levels:
//  1. Field parsing: required values present, ids and capacity positive
//     integers, price in Brazilian notation, dates ISO or DD/MM/YYYY.
//  2. Batch rules: cross-field expressions compiled with expr and evaluated
//     against the parsed batch (expiry not before harvest, price above zero).
//
// All problems are collected so the form can flag every field at once.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Form field name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is the set of problems found in one batch.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "invalid batch"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return "invalid batch: " + strings.Join(parts, "; ")
}

// Fields returns the names of the invalid fields, sorted and without duplicates.
func (ve ValidationErrors) Fields() []string {
	seen := make(map[string]bool, len(ve))
	var fields []string
	for _, e := range ve {
		if e.Field == "" || seen[e.Field] {
			continue
		}
		seen[e.Field] = true
		fields = append(fields, e.Field)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether field has at least one error.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// RuleEnv is the environment batch rules are evaluated against.
// Dates are expressed as days since the Unix epoch so they compare as integers.
type RuleEnv struct {
	QuantMax      int
	PrecoCentavos int
	Colheita      int
	Validade      int
}

func ruleEnvFor(b Batch) RuleEnv {
	return RuleEnv{
		QuantMax:      int(b.QuantMax),
		PrecoCentavos: int(b.PrecoCentavos),
		Colheita:      int(b.DtColheita.Unix() / 86400),
		Validade:      int(b.DtValidade.Unix() / 86400),
	}
}

// RuleSpec declares one cross-field rule. Expr must evaluate to a boolean;
// false reports Message against Field.
type RuleSpec struct {
	Field   string
	Expr    string
	Message string
}

// DefaultRules are the batch rules applied by the service.
var DefaultRules = []RuleSpec{
	{Field: FieldDtValidade, Expr: "Validade >= Colheita", Message: "expiry date is before harvest date"},
	{Field: FieldPreco, Expr: "PrecoCentavos > 0", Message: "price must be greater than zero"},
}

type compiledRule struct {
	spec    RuleSpec
	program *vm.Program
}

// BatchRules is a compiled, immutable set of batch rules. Safe for concurrent use.
type BatchRules struct {
	rules []compiledRule
}

// CompileRules compiles rule expressions against RuleEnv.
// An expression that does not type-check as a boolean is an error.
func CompileRules(specs []RuleSpec) (*BatchRules, error) {
	br := &BatchRules{rules: make([]compiledRule, 0, len(specs))}
	for _, s := range specs {
		program, err := expr.Compile(s.Expr, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", s.Expr, err)
		}
		br.rules = append(br.rules, compiledRule{spec: s, program: program})
	}
	return br, nil
}

// Check evaluates every rule against b and returns the failed ones.
func (br *BatchRules) Check(b Batch) ValidationErrors {
	if br == nil {
		return nil
	}
	env := ruleEnvFor(b)

	var errs ValidationErrors
	for _, r := range br.rules {
		out, err := expr.Run(r.program, env)
		if err != nil {
			errs = append(errs, ValidationError{Field: r.spec.Field, Message: err.Error()})
			continue
		}
		if ok, _ := out.(bool); !ok {
			errs = append(errs, ValidationError{Field: r.spec.Field, Message: r.spec.Message})
		}
	}
	return errs
}
