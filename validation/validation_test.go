package validation

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/foremit/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("event", "data")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("event", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorNonNegativeDuration(t *testing.T) {
	v := New().NonNegativeDuration("keep_alive", 0).NonNegativeDuration("first_event_timeout", time.Second)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}
	v.NonNegativeDuration("in_between_timeout", -time.Millisecond)
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "in_between_timeout" {
		t.Errorf("expected one in_between_timeout error, got %v", v.Errors())
	}
}

func TestValidatorNonEmptyStrings(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		fields []string
	}{
		{"valid", []string{"close", "end"}, nil},
		{"empty", nil, []string{"end"}},
		{"blank element", []string{"close", ""}, []string{"end[1]"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().NonEmptyStrings("end", tc.values)
			if len(v.Errors()) != len(tc.fields) {
				t.Fatalf("expected %d errors, got %v", len(tc.fields), v.Errors())
			}
			for i, f := range tc.fields {
				if v.Errors()[i].Field != f {
					t.Errorf("expected field %q, got %q", f, v.Errors()[i].Field)
				}
			}
		})
	}
}

func TestValidatorError(t *testing.T) {
	if New().Error() != nil {
		t.Error("expected nil error without collected errors")
	}

	err := New().Min("limit", -1, 0).Check(false, "transform", "must be callable").Error()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidOption) {
		t.Errorf("expected INVALID_OPTION, got %v", err)
	}
	if !strings.Contains(err.Error(), "limit: must be at least 0") || !strings.Contains(err.Error(), "transform: must be callable") {
		t.Errorf("expected both messages, got %q", err.Error())
	}
	appErr, _ := errors.AsAppError(err)
	if fields, ok := appErr.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestValidatorError_SingleFieldNamesOption(t *testing.T) {
	err := New().Required("event", "").Error()
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["option"] != "event" {
		t.Errorf("expected option=event, got %v", appErr.Details["option"])
	}
}

func TestValidatorMerge(t *testing.T) {
	inner := New().Required("event", "").Error()
	v := New().Merge("config", inner).Merge("config", nil).Merge("other", stderrors.New("plain"))
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
	if v.Errors()[0].Field != "event" || v.Errors()[1].Field != "other" {
		t.Errorf("unexpected merged fields %v", v.Errors())
	}
}

type tagged struct {
	Event string   `mapstructure:"event" validate:"required"`
	End   []string `mapstructure:"end" validate:"required,min=1,dive,required"`
	Limit int      `mapstructure:"limit" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(tagged{Event: "data", End: []string{"end"}}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	err := Validate(tagged{End: []string{"close", ""}, Limit: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"event: is required", "end[1]: is required", "limit: must be greater than or equal to 0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("InBetweenTimeout"); got != "in_between_timeout" {
		t.Errorf("expected in_between_timeout, got %q", got)
	}
}
