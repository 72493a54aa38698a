// Package fieldpath tokenizes form-field names written in dot/bracket notation
// (`user.addresses[0].street`, `items[].qty`, `user[name]`) into ordered path
// segments and renders segments back into field names.
//
// Parsing is permissive: a name that cannot be tokenized degrades to a single
// literal key holding the whole name, so serialization never aborts on an
// unconventional control name.
package fieldpath

import (
	"strconv"
	"strings"
)

// Kind enumerates the segment variants.
type Kind uint8

const (
	// KindKey addresses a mapping entry.
	KindKey Kind = iota
	// KindIndex addresses a sequence position.
	KindIndex
	// KindAppend is the empty bracket pair: the next free sequence slot.
	KindAppend
	// KindWildcard is non-numeric bracket content (including `*`). It matches
	// any key or position on the lookup side and is stored under its raw text
	// when building.
	KindWildcard
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindIndex:
		return "index"
	case KindAppend:
		return "append"
	case KindWildcard:
		return "wildcard"
	default:
		return "unknown"
	}
}

// Segment is a single path step. Key holds the text for key and wildcard
// segments; Index holds the position for index segments.
type Segment struct {
	Kind  Kind
	Key   string
	Index int
}

// Key returns a key segment.
func Key(name string) Segment {
	return Segment{Kind: KindKey, Key: name}
}

// Index returns an index segment.
func Index(i int) Segment {
	return Segment{Kind: KindIndex, Index: i}
}

// Append returns an append marker segment.
func Append() Segment {
	return Segment{Kind: KindAppend}
}

// Wildcard returns a wildcard segment carrying its raw bracket content.
func Wildcard(raw string) Segment {
	return Segment{Kind: KindWildcard, Key: raw}
}

// IsAny reports whether the segment is the `*` wildcard.
func (s Segment) IsAny() bool {
	return s.Kind == KindWildcard && s.Key == "*"
}

// IsSequence reports whether the segment addresses a sequence slot.
func (s Segment) IsSequence() bool {
	return s.Kind == KindIndex || s.Kind == KindAppend
}

// Path is an ordered, non-empty sequence of segments.
type Path []Segment

// String renders the path using dot notation.
func (p Path) String() string {
	return Render(p, NotationDots)
}

// Clone returns a copy that can be modified without touching p.
func (p Path) Clone() Path {
	return append(Path(nil), p...)
}

// Notation selects how bracket content and rendering are interpreted.
type Notation uint8

const (
	// NotationDots nests with `.` and reserves brackets for positions:
	// `user.addresses[0].street`. Non-numeric bracket content is a wildcard.
	NotationDots Notation = iota
	// NotationBrackets nests with brackets only, Rails/jQuery.param style:
	// `user[addresses][0][street]`. Non-numeric bracket content is a key.
	NotationBrackets
)

// ParseNotation maps a configuration string onto a Notation. Unknown values
// yield NotationDots.
func ParseNotation(raw string) Notation {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "brackets", "bracket", "rails":
		return NotationBrackets
	default:
		return NotationDots
	}
}

func (n Notation) String() string {
	if n == NotationBrackets {
		return "brackets"
	}
	return "dots"
}

// Parse tokenizes name using dot notation rules.
func Parse(name string) Path {
	return ParseWith(name, NotationDots)
}

// ParseWith tokenizes name. It never fails: malformed names become a single
// key segment equal to the whole name.
func ParseWith(name string, notation Notation) Path {
	parts := strings.Split(name, ".")
	out := make(Path, 0, len(parts))
	for i, part := range parts {
		segments, ok := parsePart(part, i == 0, notation)
		if !ok {
			return Path{Key(name)}
		}
		out = append(out, segments...)
	}
	return out
}

// Degraded reports whether p is the literal fallback produced for a name that
// carries path syntax but could not be tokenized.
func Degraded(name string, p Path) bool {
	return len(p) == 1 && p[0].Kind == KindKey && p[0].Key == name && strings.ContainsAny(name, ".[]")
}

func parsePart(part string, first bool, notation Notation) ([]Segment, bool) {
	if part == "" {
		return nil, false
	}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.IndexByte(part, ']') >= 0 {
			return nil, false
		}
		return []Segment{Key(part)}, true
	}

	base := part[:open]
	if strings.IndexByte(base, ']') >= 0 {
		return nil, false
	}
	if base == "" && first {
		return nil, false
	}

	var out []Segment
	if base != "" {
		out = append(out, Key(base))
	}

	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		content := rest[1:end]
		if strings.IndexByte(content, '[') >= 0 {
			return nil, false
		}
		out = append(out, bracketSegment(content, notation))
		rest = rest[end+1:]
	}
	return out, true
}

func bracketSegment(content string, notation Notation) Segment {
	if content == "" {
		return Append()
	}
	if idx, ok := numeric(content); ok {
		return Index(idx)
	}
	if notation == NotationBrackets && content != "*" {
		return Key(content)
	}
	return Wildcard(content)
}

// numeric accepts plain decimal digits that fit an int.
func numeric(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize rewrites dotted numeric keys after the first segment into index
// segments and dotted `*` keys into wildcards, so `items.2.name` and
// `items[2].name` share one shape.
func Normalize(p Path) Path {
	out := p.Clone()
	for i := 1; i < len(out); i++ {
		seg := out[i]
		if seg.Kind != KindKey {
			continue
		}
		if seg.Key == "*" {
			out[i] = Wildcard("*")
			continue
		}
		if idx, ok := numeric(seg.Key); ok {
			out[i] = Index(idx)
		}
	}
	return out
}

// Render writes p back into a field name.
func Render(p Path, notation Notation) string {
	var b strings.Builder
	for i, seg := range p {
		switch seg.Kind {
		case KindKey:
			switch {
			case i == 0:
				b.WriteString(seg.Key)
			case notation == NotationBrackets:
				b.WriteByte('[')
				b.WriteString(seg.Key)
				b.WriteByte(']')
			default:
				b.WriteByte('.')
				b.WriteString(seg.Key)
			}
		case KindIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		case KindAppend:
			b.WriteString("[]")
		case KindWildcard:
			b.WriteByte('[')
			b.WriteString(seg.Key)
			b.WriteByte(']')
		}
	}
	return b.String()
}
