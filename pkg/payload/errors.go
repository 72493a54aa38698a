package payload

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrMalformedErrors reports an error payload that is not a JSON object.
var ErrMalformedErrors = errors.New("payload: malformed error payload")

// Errors splits a decoded error payload into field-level messages keyed by
// error path and form-level messages. Order lists the field paths in the
// order the payload gave them.
type Errors struct {
	Fields map[string][]string
	Form   []string
	Order  []string
}

// Paths returns the field error paths in payload order. Paths missing from
// Order follow in sorted order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	seen := make(map[string]struct{}, len(e.Fields))
	for _, path := range e.Order {
		if _, ok := e.Fields[path]; !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	rest := make([]string, 0, len(e.Fields)-len(paths))
	for path := range e.Fields {
		if _, ok := seen[path]; !ok {
			rest = append(rest, path)
		}
	}
	sort.Strings(rest)
	return append(paths, rest...)
}

// Empty reports whether there is nothing to display.
func (e Errors) Empty() bool {
	return len(e.Fields) == 0 && len(e.Form) == 0
}

// DecodeErrors reads an error response body. The path mapping is taken from
// an `errors` envelope when present (a sibling `message` string becomes a
// form-level message) and from the whole object otherwise. Each path maps to
// a string, an array of strings or an object whose values are strings.
// Object keys keep payload order, except that integer keys come first in
// ascending order.
func DecodeErrors(data []byte) (Errors, error) {
	if !json.Valid(data) {
		return Errors{}, fmt.Errorf("%w: invalid JSON", ErrMalformedErrors)
	}
	value, err := decodeOrdered(json.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return Errors{}, fmt.Errorf("%w: %v", ErrMalformedErrors, err)
	}
	top, ok := value.(object)
	if !ok {
		return Errors{}, ErrMalformedErrors
	}

	mapping := top
	var formLevel []string
	if envelope, ok := top.get("errors").(object); ok {
		mapping = envelope
		if message, ok := top.get("message").(string); ok {
			formLevel = append(formLevel, message)
		}
	}

	keys := mapping.keys()
	raw := make(map[string][]string, len(keys))
	for _, path := range keys {
		if messages := messagesOf(mapping.get(path)); len(messages) > 0 {
			raw[path] = messages
		}
	}

	out := splitErrors(keys, raw)
	out.Form = MergeFormErrors(formLevel, out.Form...)
	return out, nil
}

// SplitErrors normalises messages (trimmed, deduplicated, order preserved)
// and moves form-level keys ("", "form", "__all__", "non_field_errors", ...)
// out of the field mapping. Paths are taken in sorted order.
func SplitErrors(payload map[string][]string) Errors {
	paths := make([]string, 0, len(payload))
	for path := range payload {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return splitErrors(paths, payload)
}

func splitErrors(paths []string, payload map[string][]string) Errors {
	out := Errors{Fields: make(map[string][]string)}
	for _, rawPath := range paths {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}
		path := strings.TrimSpace(rawPath)
		if IsFormLevelKey(path) {
			out.Form = append(out.Form, messages...)
			continue
		}
		if _, exists := out.Fields[path]; !exists {
			out.Order = append(out.Order, path)
		}
		out.Fields[path] = append(out.Fields[path], messages...)
	}

	if len(out.Fields) == 0 {
		out.Fields = nil
	}
	out.Form = normalizeMessages(out.Form)
	return out
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// JoinMessages renders messages as a single validation message.
func JoinMessages(messages []string) string {
	return strings.Join(messages, ". ")
}

// IsFormLevelKey reports error keys that address the whole form.
func IsFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

func messagesOf(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, messagesOf(item)...)
		}
		return out
	case object:
		out := make([]string, 0, len(v))
		for _, key := range v.keys() {
			out = append(out, messagesOf(v.get(key))...)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
