package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"duplicate key", errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), "DB001"},
		{"unique constraint", errors.New("unique constraint violated"), "DB002"},
		{"foreign key", errors.New("insert or update on table \"lotes\" violates foreign key constraint"), "DB003"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB004"},
		{"connection reset", errors.New("read: connection reset by peer"), "DB005"},
		{"i/o timeout", errors.New("read tcp: i/o timeout"), "DB006"},
		{"deadlock", errors.New("deadlock detected"), "DB007"},
		{"serialization", errors.New("could not serialize access due to concurrent update"), "DB008"},

		{"empty label sentinel", fmt.Errorf("create: %w", ErrEmptyLabel), "PRD001"},
		{"long label sentinel", fmt.Errorf("%w: max 100 characters", ErrLabelTooLong), "PRD002"},
		{"unknown category", fmt.Errorf("%w: cores", ErrUnknownCategory), "OPT001"},
		{"busy", ErrTooManyWrites, "REQ003"},
		{"cancelled", fmt.Errorf("list tipos: %w", context.Canceled), "REQ001"},
		{"deadline", fmt.Errorf("list tipos: %w", context.DeadlineExceeded), "REQ002"},

		{"required field", ValidationErrors{{Field: FieldProduto, Message: "required field is empty"}}, "VAL003"},
		{"invalid date", ValidationErrors{{Field: FieldDtColheita, Message: "invalid date"}}, "VAL001"},
		{"missing reference", ValidationErrors{{Field: FieldTipo, Message: "referenced option does not exist"}}, "VAL005"},
		{"expiry rule", ValidationErrors{{Field: FieldDtValidade, Message: "expiry date is before harvest date"}}, "VAL006"},

		{"unknown error", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Errorf("MapError(%v).Message is empty", tt.err)
			}
		})
	}
}

func TestMapError_CaseInsensitive(t *testing.T) {
	if got := MapError(errors.New("DEADLOCK DETECTED")); got.Code != "DB007" {
		t.Errorf("MapError(upper case).Code = %q, want DB007", got.Code)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("connection refused"), true},
		{errors.New("mystery"), false},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should return nil")
	}

	technical := errors.New("dial tcp: connection refused")
	ue := NewUserError(technical)

	if ue.User.Code != "DB004" {
		t.Errorf("User.Code = %q, want DB004", ue.User.Code)
	}
	if ue.Error() != ue.User.Message {
		t.Errorf("Error() = %q, want %q", ue.Error(), ue.User.Message)
	}
	if !errors.Is(ue, technical) {
		t.Error("UserError should unwrap to the technical error")
	}

	wrapped := fmt.Errorf("handler: %w", ue)
	if got := MapError(wrapped); got.Code != "DB004" {
		t.Errorf("MapError(wrapped UserError).Code = %q, want DB004", got.Code)
	}
}
