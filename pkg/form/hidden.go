package form

import (
	"fmt"
	"strings"
)

// HiddenField is a hidden control submitted alongside the visible ones. Use
// the helpers (CSRFToken, AuthToken, VersionField) for common fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend ("_csrf", "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// AuthToken constructs a hidden field carrying an authentication token or
// session hint.
func AuthToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// VersionField constructs a hidden field used for optimistic locking
// ("version", "if-match").
func VersionField(name string, version any) HiddenField {
	return Hidden(name, version)
}

// WithHidden returns a copy of f with the fields appended as hidden controls.
// Empty names are dropped; a field whose name already belongs to a hidden
// control replaces that control's value instead of adding a second one.
func (f Form) WithHidden(fields ...HiddenField) Form {
	out := f
	out.Controls = append([]Control(nil), f.Controls...)
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		replaced := false
		for i := range out.Controls {
			if out.Controls[i].Name == name && out.Controls[i].Kind == KindHidden {
				out.Controls[i].Values = []string{field.Value}
				replaced = true
				break
			}
		}
		if !replaced {
			out.Controls = append(out.Controls, Control{
				Name:   name,
				Kind:   KindHidden,
				Values: []string{field.Value},
			})
		}
	}
	return out
}
