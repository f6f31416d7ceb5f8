package guests

// List is the editable guest input state of a booking or edit form. Inputs
// and Errors always have the same length.
type List struct {
	Inputs []string `json:"inputs"`
	Errors []string `json:"errors"`
}

// NewList starts a list from existing guests with no errors.
func NewList(initial []string) *List {
	return &List{
		Inputs: append([]string{}, initial...),
		Errors: make([]string, len(initial)),
	}
}

// ValidateAt validates the input at index against primary and records the
// result. It reports whether the input is acceptable.
func (l *List) ValidateAt(index int, primary string) bool {
	if index < 0 || index >= len(l.Inputs) {
		return true
	}
	msg := Validate(l.Inputs[index], primary, l.Inputs, index)
	l.Errors[index] = msg
	return msg == ""
}

// ValidateAll re-validates every input.
func (l *List) ValidateAll(primary string) bool {
	ok, errs := ValidateAll(l.Inputs, primary)
	l.Errors = errs
	return ok
}
