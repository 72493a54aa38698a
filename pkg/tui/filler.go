// Package tui fills form snapshots interactively from a terminal. Each
// fillable control is prompted with its current state as the default; the
// answers are written back into a copy of the snapshot.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/form"
)

// Filler prompts for the values of a form snapshot.
type Filler struct {
	driver PromptDriver
	theme  Theme
	logger *slog.Logger
}

// NewFiller constructs a Filler. Without WithPromptDriver it prompts through
// survey on the process terminal.
func NewFiller(options ...Option) *Filler {
	f := &Filler{logger: discardLogger()}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts for every enabled, user-editable control of f and returns the
// updated snapshot. Hidden, disabled and submitter controls keep their state.
// Radio buttons sharing a name are asked once as a single choice.
func (fl *Filler) Fill(ctx context.Context, f form.Form) (form.Form, error) {
	out := f
	out.Controls = make([]form.Control, len(f.Controls))
	for i, c := range f.Controls {
		out.Controls[i] = cloneControl(c)
	}

	if f.ID != "" {
		if err := fl.driver.Info(ctx, fl.theme.InfoPrefix+"Filling form "+f.ID); err != nil {
			return form.Form{}, err
		}
	}

	asked := make(map[string]bool)
	for i := range out.Controls {
		if err := ctx.Err(); err != nil {
			return form.Form{}, err
		}
		c := &out.Controls[i]
		if !fillable(*c) {
			fl.logger.Debug("control not prompted", slog.String("name", c.Name), slog.String("kind", string(c.Kind)))
			continue
		}

		var err error
		switch c.Kind {
		case form.KindRadio:
			if asked[c.Name] {
				continue
			}
			asked[c.Name] = true
			err = fl.radioGroup(ctx, out.Controls, c.Name)
		case form.KindCheckbox:
			c.Checked, err = fl.driver.Confirm(ctx, ConfirmConfig{Message: fl.message(*c), Default: c.Checked})
		case form.KindSelectOne:
			err = fl.selectOne(ctx, c)
		case form.KindSelectMultiple:
			err = fl.selectMultiple(ctx, c)
		case form.KindTextarea:
			var value string
			value, err = fl.driver.TextArea(ctx, TextAreaConfig{Message: fl.message(*c), Default: c.Value()})
			c.Values = []string{value}
		case form.KindPassword:
			var value string
			value, err = fl.driver.Password(ctx, InputConfig{Message: fl.message(*c), Default: c.Value()})
			c.Values = []string{value}
		default:
			var value string
			value, err = fl.driver.Input(ctx, InputConfig{
				Message:   fl.message(*c),
				Default:   c.Value(),
				Validator: validatorFor(*c),
			})
			c.Values = []string{value}
		}
		if err != nil {
			return form.Form{}, fmt.Errorf("tui: fill %s: %w", c.Name, err)
		}
	}
	return out, nil
}

// Provider returns a form.Provider that fills each snapshot of base.
func (fl *Filler) Provider(base form.Provider) form.Provider {
	return filledProvider{base: base, filler: fl}
}

type filledProvider struct {
	base   form.Provider
	filler *Filler
}

func (p filledProvider) Snapshot(ctx context.Context) (form.Form, error) {
	f, err := p.base.Snapshot(ctx)
	if err != nil {
		return form.Form{}, err
	}
	return p.filler.Fill(ctx, f)
}

func (fl *Filler) radioGroup(ctx context.Context, controls []form.Control, name string) error {
	var (
		members []int
		labels  []string
		label   string
	)
	current := -1
	for i, c := range controls {
		if c.Name != name || c.Kind != form.KindRadio || c.Disabled {
			continue
		}
		if c.Checked {
			current = len(members)
		}
		if label == "" {
			label = c.Label
		}
		members = append(members, i)
		labels = append(labels, c.Value())
	}

	choice, err := fl.driver.Select(ctx, SelectConfig{
		Message:      fl.theme.PromptPrefix + firstNonEmpty(label, name),
		Options:      labels,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	for pos, i := range members {
		controls[i].Checked = pos == choice
	}
	return nil
}

func (fl *Filler) selectOne(ctx context.Context, c *form.Control) error {
	enabled, labels := enabledOptions(c.Options)
	current := -1
	for pos, i := range enabled {
		if c.Options[i].Selected {
			current = pos
		}
	}
	choice, err := fl.driver.Select(ctx, SelectConfig{Message: fl.message(*c), Options: labels, DefaultIndex: current})
	if err != nil {
		return err
	}
	c.Values = nil
	for pos, i := range enabled {
		c.Options[i].Selected = pos == choice
		if pos == choice {
			c.Values = []string{c.Options[i].Value}
		}
	}
	return nil
}

func (fl *Filler) selectMultiple(ctx context.Context, c *form.Control) error {
	enabled, labels := enabledOptions(c.Options)
	var defaults []int
	for pos, i := range enabled {
		if c.Options[i].Selected {
			defaults = append(defaults, pos)
		}
	}
	chosen, err := fl.driver.MultiSelect(ctx, SelectConfig{Message: fl.message(*c), Options: labels, Defaults: defaults})
	if err != nil {
		return err
	}
	picked := make(map[int]bool, len(chosen))
	for _, pos := range chosen {
		picked[pos] = true
	}
	c.Values = nil
	for pos, i := range enabled {
		c.Options[i].Selected = picked[pos]
		if picked[pos] {
			c.Values = append(c.Values, c.Options[i].Value)
		}
	}
	return nil
}

func (fl *Filler) message(c form.Control) string {
	return fl.theme.PromptPrefix + firstNonEmpty(c.Label, c.Name)
}

func fillable(c form.Control) bool {
	if c.Disabled || c.Name == "" || c.Kind.Submitter() {
		return false
	}
	return c.Kind != form.KindHidden && c.Kind != form.KindKeygen
}

func enabledOptions(options []form.Option) ([]int, []string) {
	var (
		indices []int
		labels  []string
	)
	for i, o := range options {
		if o.Disabled {
			continue
		}
		indices = append(indices, i)
		labels = append(labels, firstNonEmpty(o.Label, o.Value))
	}
	return indices, labels
}

// validatorFor rejects answers a typed control would not accept. Empty
// answers are always allowed.
func validatorFor(c form.Control) func(string) error {
	hint := c.Hint
	if hint == cast.HintNone && c.Kind == form.KindNumber {
		hint = cast.HintFloat
	}
	switch hint {
	case cast.HintInt:
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
				return fmt.Errorf("%q is not an integer", s)
			}
			return nil
		}
	case cast.HintFloat:
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				return fmt.Errorf("%q is not a number", s)
			}
			return nil
		}
	default:
		return nil
	}
}

func cloneControl(c form.Control) form.Control {
	c.Values = append([]string(nil), c.Values...)
	c.Options = append([]form.Option(nil), c.Options...)
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
