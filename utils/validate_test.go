package utils

import (
	"testing"

	"slotbook/models"
)

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	req := models.SignupRequest{Name: "A", Email: "bad", Password: "123", Timezone: "0530"}
	err := ValidateStruct(req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := FieldErrors(err)
	for _, f := range []string{"name", "email", "password", "timezone"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing field error for %q in %v", f, fields)
		}
	}
	if fields["timezone"] != "Invalid timezone format" {
		t.Fatalf("timezone message = %q", fields["timezone"])
	}
}

func TestValidateStructAcceptsValidSignup(t *testing.T) {
	req := models.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Timezone: "+05:30"}
	if err := ValidateStruct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
