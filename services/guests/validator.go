// Package guests enforces the rules on the optional guest email list attached
// to an appointment: entries are trimmed, compared case-insensitively, must
// differ from the primary email, and may not repeat.
package guests

import (
	"strings"

	"slotbook/services/apierr"
	"slotbook/utils"
)

const (
	ErrSameAsPrimary = "Guest email cannot be the same as primary email"
	ErrDuplicate     = "This email is already added as a guest"
	ErrInvalidEmail  = "Invalid email address"
)

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks candidate, the entry at index of all, against the primary
// email and the other entries. It returns "" when the entry is acceptable.
// An empty candidate is always acceptable; the field is optional.
func Validate(candidate, primary string, all []string, index int) string {
	c := normalize(candidate)
	if c == "" {
		return ""
	}
	if c == normalize(primary) {
		return ErrSameAsPrimary
	}
	for i, other := range all {
		if i != index && normalize(other) == c {
			return ErrDuplicate
		}
	}
	return ""
}

// ValidateAll validates every entry of list. errs has one slot per entry;
// the first occurrence of a repeated address is accepted and later ones are
// flagged.
func ValidateAll(list []string, primary string) (bool, []string) {
	errs := make([]string, len(list))
	seen := make(map[string]struct{}, len(list))
	p := normalize(primary)
	valid := true
	for i, email := range list {
		e := normalize(email)
		if e == "" {
			continue
		}
		if e == p {
			errs[i] = ErrSameAsPrimary
			valid = false
			continue
		}
		if _, dup := seen[e]; dup {
			errs[i] = ErrDuplicate
			valid = false
			continue
		}
		seen[e] = struct{}{}
	}
	return valid, errs
}

// HasDuplicateEmails reports whether any non-empty address repeats.
func HasDuplicateEmails(emails []string) bool {
	seen := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		e := normalize(email)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			return true
		}
		seen[e] = struct{}{}
	}
	return false
}

// Sanitize trims every entry and drops the empty ones.
func Sanitize(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, email := range inputs {
		if e := strings.TrimSpace(email); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// PrepareForSubmission returns the guest list to send with a create or edit
// request. Every rule is re-checked against the primary email as it is now,
// so stale per-field results cannot slip through. The first violation aborts
// the whole submission.
func PrepareForSubmission(inputs []string, primary string) ([]string, error) {
	valid, errs := ValidateAll(inputs, primary)
	for i, email := range inputs {
		e := strings.TrimSpace(email)
		if e == "" || errs[i] != "" {
			continue
		}
		if utils.GetValidator().Var(e, "email") != nil {
			errs[i] = ErrInvalidEmail
			valid = false
		}
	}
	if !valid {
		for _, msg := range errs {
			if msg != "" {
				return nil, &apierr.ValidationFailure{Message: msg, GuestErrors: errs}
			}
		}
	}
	return Sanitize(inputs), nil
}
