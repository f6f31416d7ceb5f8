package guests

import (
	"errors"
	"reflect"
	"testing"

	"slotbook/services/apierr"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		primary   string
		all       []string
		index     int
		want      string
	}{
		{"same as primary", "a@x.com", "a@x.com", nil, 0, ErrSameAsPrimary},
		{"primary differs by case and space", "  A@X.com ", "a@x.COM", nil, 0, ErrSameAsPrimary},
		{"duplicate of other entry", "b@x.com", "a@x.com", []string{"b@x.com", "B@x.com"}, 1, ErrDuplicate},
		{"own slot ignored", "b@x.com", "a@x.com", []string{"b@x.com"}, 0, ""},
		{"empty candidate", "   ", "a@x.com", []string{"", ""}, 0, ""},
		{"distinct", "c@x.com", "a@x.com", []string{"b@x.com", "c@x.com"}, 1, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Validate(tc.candidate, tc.primary, tc.all, tc.index); got != tc.want {
				t.Fatalf("Validate = %q, want %q", got, tc.want)
			}
			// Same inputs, same answer.
			if got := Validate(tc.candidate, tc.primary, tc.all, tc.index); got != tc.want {
				t.Fatalf("second Validate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateAllFirstOccurrenceWins(t *testing.T) {
	ok, errs := ValidateAll([]string{"g1@x.com", "", "G1@x.com", "p@x.com"}, "p@x.com")
	if ok {
		t.Fatal("expected invalid list")
	}
	want := []string{"", "", ErrDuplicate, ErrSameAsPrimary}
	if !reflect.DeepEqual(errs, want) {
		t.Fatalf("errs = %q, want %q", errs, want)
	}
}

func TestHasDuplicateEmails(t *testing.T) {
	if HasDuplicateEmails([]string{"a@x.com", "", " ", "b@x.com"}) {
		t.Fatal("blank entries are not duplicates")
	}
	if !HasDuplicateEmails([]string{"a@x.com", " A@x.com"}) {
		t.Fatal("case-insensitive duplicate missed")
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize([]string{" a@x.com ", "", "  ", "b@x.com"})
	if !reflect.DeepEqual(got, []string{"a@x.com", "b@x.com"}) {
		t.Fatalf("Sanitize = %q", got)
	}
}

func TestPrepareForSubmissionAbortsOnDuplicate(t *testing.T) {
	_, err := PrepareForSubmission([]string{"g1@x.com", "g1@x.com"}, "p@x.com")
	var vf *apierr.ValidationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("expected ValidationFailure, got %v", err)
	}
	if vf.Message != ErrDuplicate {
		t.Fatalf("message = %q", vf.Message)
	}
	if len(vf.GuestErrors) != 2 || vf.GuestErrors[1] != ErrDuplicate {
		t.Fatalf("guest errors = %q", vf.GuestErrors)
	}
}

func TestPrepareForSubmissionRechecksPrimary(t *testing.T) {
	// The guest was fine when typed; the primary email changed afterwards.
	_, err := PrepareForSubmission([]string{"new@x.com"}, "NEW@x.com")
	if !apierr.IsValidation(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestPrepareForSubmissionRejectsMalformed(t *testing.T) {
	_, err := PrepareForSubmission([]string{"ok@x.com", "not-an-email"}, "p@x.com")
	var vf *apierr.ValidationFailure
	if !errors.As(err, &vf) || vf.Message != ErrInvalidEmail {
		t.Fatalf("expected invalid email failure, got %v", err)
	}
}

func TestPrepareForSubmissionSanitizes(t *testing.T) {
	got, err := PrepareForSubmission([]string{" g1@x.com", "", "g2@x.com  "}, "p@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"g1@x.com", "g2@x.com"}) {
		t.Fatalf("got %q", got)
	}
}
