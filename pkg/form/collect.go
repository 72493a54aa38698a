package form

import "github.com/goliatone/go-formpath/pkg/cast"

// Entry is one submitted (name, value) pair with the control's type hint.
type Entry struct {
	Name  string
	Value string
	Hint  cast.Hint
}

// Eligible reports whether c contributes to a submission: it must be named,
// enabled, of a submittable kind and, for checkboxes and radios, checked.
func Eligible(c Control) bool {
	if c.Name == "" || c.Disabled || c.Kind.Submitter() {
		return false
	}
	if c.Kind.Checkable() && !c.Checked {
		return false
	}
	return true
}

// Collect enumerates the entries f would submit, in document order.
// Multi-valued controls expand into one entry per value.
func Collect(f Form) []Entry {
	entries := make([]Entry, 0, len(f.Controls))
	for _, c := range f.Controls {
		if !Eligible(c) {
			continue
		}
		for _, value := range c.Values {
			entries = append(entries, Entry{Name: c.Name, Value: value, Hint: c.Hint})
		}
	}
	return entries
}
