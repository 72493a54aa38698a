// Package form models a snapshot of a form's controls: the state a browser
// would read at submit time (names, values, checked and disabled flags, type
// hints) in document order. Providers such as htmlform and formdef build
// snapshots; the serializer and the error resolver consume them.
package form

import (
	"context"
	"strings"

	"github.com/goliatone/go-formpath/pkg/cast"
)

// Kind is the control type as a browser reports it (`input.type`,
// `select-one`, `select-multiple`, `textarea`).
type Kind string

const (
	KindText           Kind = "text"
	KindHidden         Kind = "hidden"
	KindPassword       Kind = "password"
	KindEmail          Kind = "email"
	KindNumber         Kind = "number"
	KindCheckbox       Kind = "checkbox"
	KindRadio          Kind = "radio"
	KindSelectOne      Kind = "select-one"
	KindSelectMultiple Kind = "select-multiple"
	KindTextarea       Kind = "textarea"
	KindKeygen         Kind = "keygen"
	KindSubmit         Kind = "submit"
	KindButton         Kind = "button"
	KindReset          Kind = "reset"
	KindImage          Kind = "image"
	KindFile           Kind = "file"
)

// ParseKind normalises a type attribute. Empty input means text.
func ParseKind(raw string) Kind {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if kind == "" {
		return KindText
	}
	return kind
}

// Submitter reports kinds that never contribute a value to the payload.
func (k Kind) Submitter() bool {
	switch k {
	case KindSubmit, KindButton, KindReset, KindImage, KindFile:
		return true
	default:
		return false
	}
}

// Checkable reports kinds that only submit while checked.
func (k Kind) Checkable() bool {
	return k == KindCheckbox || k == KindRadio
}

// Multiple reports kinds that can carry several values.
func (k Kind) Multiple() bool {
	return k == KindSelectMultiple
}

// Option is a choice of a select control.
type Option struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Control is a single form control. Values holds the current value; select
// controls carry one entry per selected option.
type Control struct {
	Name     string    `json:"name" yaml:"name"`
	Kind     Kind      `json:"type" yaml:"type"`
	Values   []string  `json:"values,omitempty" yaml:"values,omitempty"`
	Checked  bool      `json:"checked,omitempty" yaml:"checked,omitempty"`
	Disabled bool      `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Hint     cast.Hint `json:"hint,omitempty" yaml:"hint,omitempty"`
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Options  []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Value returns the first value, or "" when the control has none.
func (c Control) Value() string {
	if len(c.Values) == 0 {
		return ""
	}
	return c.Values[0]
}

// Form is a snapshot of a form in document order.
type Form struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Action   string    `json:"action,omitempty" yaml:"action,omitempty"`
	Method   string    `json:"method,omitempty" yaml:"method,omitempty"`
	Controls []Control `json:"controls" yaml:"controls"`
}

// Ref identifies one control of a snapshot. Position counts controls sharing
// Name in document order; Index is the position in Form.Controls.
type Ref struct {
	Name     string
	Position int
	Index    int
}

// Named returns references to every control whose name equals name, in
// document order. Eligibility for submission is not considered.
func (f Form) Named(name string) []Ref {
	var refs []Ref
	for i, c := range f.Controls {
		if c.Name != name {
			continue
		}
		refs = append(refs, Ref{Name: name, Position: len(refs), Index: i})
	}
	return refs
}

// Control returns the control a reference points at.
func (f Form) Control(ref Ref) (Control, bool) {
	if ref.Index < 0 || ref.Index >= len(f.Controls) {
		return Control{}, false
	}
	c := f.Controls[ref.Index]
	if c.Name != ref.Name {
		return Control{}, false
	}
	return c, true
}

// MethodOrDefault returns the upper-cased method, POST when unset.
func (f Form) MethodOrDefault() string {
	method := strings.ToUpper(strings.TrimSpace(f.Method))
	if method == "" {
		return "POST"
	}
	return method
}

// Provider reads the live state of a form. Each call returns a fresh
// snapshot.
type Provider interface {
	Snapshot(ctx context.Context) (Form, error)
}

// Static is a Provider over a fixed snapshot.
type Static Form

// Snapshot returns a copy of the snapshot.
func (s Static) Snapshot(ctx context.Context) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	f := Form(s)
	f.Controls = append([]Control(nil), f.Controls...)
	return f, nil
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Form, error)

// Snapshot calls fn.
func (fn ProviderFunc) Snapshot(ctx context.Context) (Form, error) {
	return fn(ctx)
}
