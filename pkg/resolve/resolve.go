// Package resolve maps server-reported error paths (`items[2].name`,
// `items.2.name`) onto form controls.
//
// A path is first tried literally, then in the configured notation, then
// with each position segment individually rewritten as an empty bracket pair
// so a repeatable control named `items[]` absorbs `items[2]` as its third
// instance.
package resolve

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
)

// Candidate is a control name to look up and the position to pick among the
// controls sharing it.
type Candidate struct {
	Name     string
	Position int
}

// Candidates lists the lookups for errorPath in priority order:
//
//  1. the trimmed path exactly as written
//  2. the normalized path rendered in notation
//  3. for each index or `*` segment, left to right, the normalized path with
//     only that segment rendered as `[]`, picking the index-th control
//     (0 for `*`)
//
// Duplicate candidates are dropped.
func Candidates(errorPath string, notation fieldpath.Notation) []Candidate {
	raw := strings.TrimSpace(errorPath)
	if raw == "" {
		return nil
	}

	var out []Candidate
	seen := make(map[Candidate]struct{}, 4)
	add := func(c Candidate) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	add(Candidate{Name: raw})

	normalized := fieldpath.Normalize(fieldpath.ParseWith(raw, notation))
	add(Candidate{Name: fieldpath.Render(normalized, notation)})

	for i, seg := range normalized {
		var position int
		switch {
		case seg.Kind == fieldpath.KindIndex:
			position = seg.Index
		case seg.IsAny():
			position = 0
		default:
			continue
		}
		generalized := normalized.Clone()
		generalized[i] = fieldpath.Append()
		add(Candidate{Name: fieldpath.Render(generalized, notation), Position: position})
	}
	return out
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNotation selects the notation used to render candidates.
func WithNotation(notation fieldpath.Notation) Option {
	return func(r *Resolver) {
		r.notation = notation
	}
}

// WithLogger attaches a logger for unresolved paths.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver finds the control an error path refers to. The zero value uses
// dot notation and does not log.
type Resolver struct {
	notation fieldpath.Notation
	logger   *slog.Logger
}

// New constructs a Resolver.
func New(options ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the first control matched by the candidates of errorPath.
// The boolean is false when no candidate matches enough controls.
func (r *Resolver) Resolve(f form.Form, errorPath string) (form.Ref, bool) {
	notation := fieldpath.NotationDots
	if r != nil {
		notation = r.notation
	}

	candidates := Candidates(errorPath, notation)
	for _, c := range candidates {
		refs := f.Named(c.Name)
		if len(refs) > c.Position {
			return refs[c.Position], true
		}
	}

	if r != nil && r.logger != nil {
		r.logger.Debug("error path not resolved",
			slog.String("path", errorPath),
			slog.Int("candidates", len(candidates)),
		)
	}
	return form.Ref{}, false
}

// Resolve uses a zero Resolver.
func Resolve(f form.Form, errorPath string) (form.Ref, bool) {
	return (*Resolver)(nil).Resolve(f, errorPath)
}
