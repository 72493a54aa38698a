package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// textSink prints validation messages, one line per control.
type textSink struct {
	w    io.Writer
	form form.Form
}

func (s textSink) Display(ref *form.Ref, messages []string) {
	if ref == nil {
		for _, message := range messages {
			fmt.Fprintf(s.w, "form: %s\n", message)
		}
		return
	}
	name := ref.Name
	if len(s.form.Named(ref.Name)) > 1 {
		name = fmt.Sprintf("%s #%d", ref.Name, ref.Position)
	}
	if c, ok := s.form.Control(*ref); ok && c.Label != "" && !strings.EqualFold(c.Label, ref.Name) {
		name = fmt.Sprintf("%s (%s)", name, c.Label)
	}
	fmt.Fprintf(s.w, "%s: %s\n", name, payload.JoinMessages(messages))
}
