// Package formdef reads form snapshots from JSON or YAML definition files.
//
// A definition lists controls in document order:
//
//	id: signup
//	action: /signup
//	fields:
//	  - name: user.name
//	    value: Ann
//	  - name: user.age
//	    type: number
//	    hint: int
//	    value: "42"
//	  - name: tags[]
//	    type: select-multiple
//	    options:
//	      - {value: red, selected: true}
//	      - {value: blue}
//
// Values follow browser defaults: checkables without a value submit "on" and
// a single select without a selected option submits its first enabled one.
package formdef

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/form"
)

// ErrInvalidDefinition wraps definition parse and validation failures.
var ErrInvalidDefinition = errors.New("formdef: invalid definition")

type definitionFile struct {
	ID     string      `json:"id,omitempty" yaml:"id,omitempty"`
	Action string      `json:"action,omitempty" yaml:"action,omitempty"`
	Method string      `json:"method,omitempty" yaml:"method,omitempty"`
	Fields []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name     string        `json:"name" yaml:"name"`
	Type     string        `json:"type,omitempty" yaml:"type,omitempty"`
	Value    *string       `json:"value,omitempty" yaml:"value,omitempty"`
	Values   []string      `json:"values,omitempty" yaml:"values,omitempty"`
	Checked  bool          `json:"checked,omitempty" yaml:"checked,omitempty"`
	Disabled bool          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Hint     string        `json:"hint,omitempty" yaml:"hint,omitempty"`
	ID       string        `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string        `json:"label,omitempty" yaml:"label,omitempty"`
	Options  []form.Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// Parse decodes a definition. JSON is tried first, then YAML; source names
// the input in errors.
func Parse(data []byte, source string) (form.Form, error) {
	if strings.TrimSpace(string(data)) == "" {
		return form.Form{}, fmt.Errorf("%w: %s is empty", ErrInvalidDefinition, source)
	}

	var def definitionFile
	if err := json.Unmarshal(data, &def); err != nil {
		def = definitionFile{}
		if yamlErr := yaml.Unmarshal(data, &def); yamlErr != nil {
			return form.Form{}, fmt.Errorf("%w: parse %s: invalid JSON or YAML", ErrInvalidDefinition, source)
		}
	}
	return normalise(def, source)
}

// LoadFile reads a definition from disk.
func LoadFile(path string) (form.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Form{}, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads a definition from fsys.
func LoadFS(fsys fs.FS, path string) (form.Form, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return form.Form{}, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// MarshalYAML writes f as a YAML definition.
func MarshalYAML(f form.Form) ([]byte, error) {
	return yaml.Marshal(toFile(f))
}

// MarshalJSON writes f as an indented JSON definition.
func MarshalJSON(f form.Form) ([]byte, error) {
	return json.MarshalIndent(toFile(f), "", "  ")
}

// Marshal picks the encoding from the file extension of path; anything other
// than .json is written as YAML.
func Marshal(f form.Form, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return MarshalJSON(f)
	}
	return MarshalYAML(f)
}

func normalise(def definitionFile, source string) (form.Form, error) {
	out := form.Form{
		ID:       strings.TrimSpace(def.ID),
		Action:   strings.TrimSpace(def.Action),
		Method:   strings.TrimSpace(def.Method),
		Controls: make([]form.Control, 0, len(def.Fields)),
	}

	for i, field := range def.Fields {
		c := form.Control{
			Name:     field.Name,
			Kind:     form.ParseKind(field.Type),
			Checked:  field.Checked,
			Disabled: field.Disabled,
			Hint:     cast.ParseHint(field.Hint),
			ID:       strings.TrimSpace(field.ID),
			Label:    strings.TrimSpace(field.Label),
			Options:  append([]form.Option(nil), field.Options...),
		}
		if field.Value != nil && len(field.Values) > 0 {
			return form.Form{}, fmt.Errorf("%w: %s field %d (%q) sets both value and values", ErrInvalidDefinition, source, i, field.Name)
		}

		switch {
		case c.Kind == form.KindSelectOne || c.Kind == form.KindSelectMultiple:
			if field.Value != nil || len(field.Values) > 0 {
				return form.Form{}, fmt.Errorf("%w: %s field %d (%q) selects through options", ErrInvalidDefinition, source, i, field.Name)
			}
			c.Values = selectedValues(c)
		case field.Value != nil:
			c.Values = []string{*field.Value}
		case len(field.Values) > 0:
			if len(field.Values) > 1 {
				return form.Form{}, fmt.Errorf("%w: %s field %d (%q) has several values", ErrInvalidDefinition, source, i, field.Name)
			}
			c.Values = append([]string(nil), field.Values...)
		case c.Kind.Checkable():
			c.Values = []string{"on"}
		default:
			c.Values = []string{""}
		}

		out.Controls = append(out.Controls, c)
	}
	return out, nil
}

// selectedValues applies select defaults and returns the submitted values.
func selectedValues(c form.Control) []string {
	if c.Kind == form.KindSelectOne {
		last := -1
		for i, o := range c.Options {
			if o.Selected {
				last = i
			}
		}
		for i := range c.Options {
			c.Options[i].Selected = i == last
		}
		if last < 0 {
			for i, o := range c.Options {
				if !o.Disabled {
					c.Options[i].Selected = true
					break
				}
			}
		}
	}

	var values []string
	for _, o := range c.Options {
		if o.Selected && !o.Disabled {
			values = append(values, o.Value)
		}
	}
	return values
}

func toFile(f form.Form) definitionFile {
	def := definitionFile{
		ID:     f.ID,
		Action: f.Action,
		Method: f.Method,
		Fields: make([]fieldFile, 0, len(f.Controls)),
	}
	for _, c := range f.Controls {
		field := fieldFile{
			Name:     c.Name,
			Checked:  c.Checked,
			Disabled: c.Disabled,
			Hint:     c.Hint.String(),
			ID:       c.ID,
			Label:    c.Label,
			Options:  c.Options,
		}
		if c.Kind != form.KindText {
			field.Type = string(c.Kind)
		}
		if !c.Kind.Multiple() && c.Kind != form.KindSelectOne && len(c.Values) == 1 {
			value := c.Values[0]
			if !(c.Kind.Checkable() && value == "on") && value != "" {
				field.Value = &value
			}
		}
		def.Fields = append(def.Fields, field)
	}
	return def
}

// Source is a form.Provider over a definition file. Every Snapshot re-reads
// the file, so edits are picked up without rebuilding the provider.
type Source struct {
	fsys fs.FS
	path string
}

var _ form.Provider = (*Source)(nil)

// NewSource reads path from fsys. A nil fsys reads from the local disk.
func NewSource(fsys fs.FS, path string) *Source {
	return &Source{fsys: fsys, path: path}
}

// Snapshot loads the current definition.
func (s *Source) Snapshot(ctx context.Context) (form.Form, error) {
	if err := ctx.Err(); err != nil {
		return form.Form{}, err
	}
	if s.fsys == nil {
		return LoadFile(s.path)
	}
	return LoadFS(s.fsys, s.path)
}
