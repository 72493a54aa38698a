// Package display routes decoded server error messages to the form controls
// they belong to.
package display

import (
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// Sink shows messages. ref is nil for form-level messages and for error paths
// that did not resolve to a control.
type Sink interface {
	Display(ref *form.Ref, messages []string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ref *form.Ref, messages []string)

// Display calls fn.
func (fn SinkFunc) Display(ref *form.Ref, messages []string) {
	fn(ref, messages)
}

// Multi fans messages out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ref *form.Ref, messages []string) {
		for _, sink := range sinks {
			if sink != nil {
				sink.Display(ref, messages)
			}
		}
	})
}

// Resolver maps an error path to a control. *resolve.Resolver satisfies it.
type Resolver interface {
	Resolve(f form.Form, errorPath string) (form.Ref, bool)
}

// Resolution records where one error path ended up.
type Resolution struct {
	Path string
	Ref  form.Ref
}

// Report summarises an Apply call.
type Report struct {
	Resolved   []Resolution
	Unresolved []string
	FormLevel  []string
}

// Valid reports whether nothing was displayed.
func (r Report) Valid() bool {
	return len(r.Resolved) == 0 && len(r.Unresolved) == 0 && len(r.FormLevel) == 0
}

// Apply resolves every field error path against f and hands the messages to
// sink. Paths that resolve to the same control are displayed together, once
// per control, in the order of Errors.Paths. Unresolved paths and form-level
// messages are displayed with a nil ref after the field messages.
func Apply(f form.Form, errs payload.Errors, resolver Resolver, sink Sink) Report {
	var report Report
	if sink == nil {
		sink = SinkFunc(func(*form.Ref, []string) {})
	}

	type group struct {
		ref      form.Ref
		messages []string
	}
	var groups []*group
	byRef := make(map[refKey]*group)

	for _, path := range errs.Paths() {
		messages := errs.Fields[path]
		if resolver != nil {
			if ref, ok := resolver.Resolve(f, path); ok {
				report.Resolved = append(report.Resolved, Resolution{Path: path, Ref: ref})
				key := keyOf(ref)
				g, exists := byRef[key]
				if !exists {
					g = &group{ref: ref}
					byRef[key] = g
					groups = append(groups, g)
				}
				g.messages = payload.MergeFormErrors(g.messages, messages...)
				continue
			}
		}
		report.Unresolved = append(report.Unresolved, path)
		report.FormLevel = payload.MergeFormErrors(report.FormLevel, messages...)
	}

	for _, g := range groups {
		ref := g.ref
		sink.Display(&ref, g.messages)
	}

	report.FormLevel = payload.MergeFormErrors(errs.Form, report.FormLevel...)
	if len(report.FormLevel) > 0 {
		sink.Display(nil, report.FormLevel)
	}
	return report
}

type refKey struct {
	name     string
	position int
}

func keyOf(ref form.Ref) refKey {
	return refKey{name: ref.Name, position: ref.Position}
}
