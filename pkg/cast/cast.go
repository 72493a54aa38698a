// Package cast converts raw control values into typed values using the type
// hint a form author attached to the control (for example
// `<input name="amount" data-type="float" value="15.01">`).
//
// Casting is total: a hint that does not fit the value falls back to string
// handling instead of failing.
package cast

import (
	"math"
	"strconv"
	"strings"
)

// Hint is the author-declared type annotation of a control.
type Hint uint8

const (
	HintNone Hint = iota
	HintInt
	HintFloat
	HintBool
)

// ParseHint maps an annotation value onto a Hint. Unknown annotations yield
// HintNone.
func ParseHint(raw string) Hint {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "integer":
		return HintInt
	case "float", "number":
		return HintFloat
	case "bool", "boolean":
		return HintBool
	default:
		return HintNone
	}
}

func (h Hint) String() string {
	switch h {
	case HintInt:
		return "int"
	case HintFloat:
		return "float"
	case HintBool:
		return "bool"
	default:
		return ""
	}
}

// MarshalText lets hints round-trip through JSON and YAML definitions.
func (h Hint) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses hints leniently; see ParseHint.
func (h *Hint) UnmarshalText(text []byte) error {
	*h = ParseHint(string(text))
	return nil
}

// Cast converts raw according to hint:
//
//   - int: accepted when the parsed integer renders back to raw exactly
//   - float: accepted when the parsed, finite number renders back to raw
//   - bool: "" and "0" are false, everything else is true
//   - otherwise "" is Null and any other text is a String with line endings
//     normalized to CRLF
func Cast(raw string, hint Hint) Value {
	switch hint {
	case HintInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && strconv.FormatInt(n, 10) == raw {
			return Int(n)
		}
	case HintFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && FormatNumber(f) == raw {
			return Float(f)
		}
	case HintBool:
		return Bool(!(raw == "" || raw == "0"))
	}

	if raw == "" {
		return Null()
	}
	return String(NormalizeNewlines(raw))
}

// NormalizeNewlines rewrites bare LF line endings as CRLF, the form-submission
// convention for textarea values.
func NormalizeNewlines(s string) string {
	if strings.IndexByte(s, '\n') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + strings.Count(s, "\n"))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' && (i == 0 || s[i-1] != '\r') {
			b.WriteString("\r\n")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FormatNumber renders f the way browsers stringify numbers: the shortest
// round-tripping digits, plain notation for magnitudes in [1e-6, 1e21) and an
// exponent without zero padding otherwise ("1e-7", "1e+21").
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
