package openapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// ErrUnsupportedBody is returned for request bodies that are not objects.
var ErrUnsupportedBody = errors.New("openapi: request body is not an object")

// FormOption configures FormFor.
type FormOption func(*formConfig)

type formConfig struct {
	notation  fieldpath.Notation
	maxDepth  int
	arrayRows int
}

// WithNotation selects the notation control names are rendered in.
func WithNotation(n fieldpath.Notation) FormOption {
	return func(cfg *formConfig) {
		cfg.notation = n
	}
}

// WithMaxDepth bounds nesting; deeper properties (typically recursive
// references) are left out. Defaults to 8.
func WithMaxDepth(depth int) FormOption {
	return func(cfg *formConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// WithArrayRows sets how many rows arrays of objects get. Defaults to 1.
func WithArrayRows(rows int) FormOption {
	return func(cfg *formConfig) {
		if rows > 0 {
			cfg.arrayRows = rows
		}
	}
}

// Format maps the request content type onto a payload format.
func (op Operation) Format() payload.Format {
	switch strings.ToLower(strings.TrimSpace(op.ContentType)) {
	case "application/x-www-form-urlencoded":
		return payload.FormatURLEncoded
	case "multipart/form-data":
		return payload.FormatMultipart
	default:
		return payload.FormatJSON
	}
}

// FormFor derives a form definition from the operation's request body.
// Property names become control names so that submitting the form rebuilds
// the body: nested objects become dotted names, arrays of scalars become
// `name[]` and arrays of objects get indexed rows (`items[0].sku`). Numbers,
// integers and booleans carry type hints; booleans are a hidden "0" paired
// with a "1" checkbox; enums become selects.
func FormFor(op Operation, options ...FormOption) (form.Form, error) {
	cfg := formConfig{notation: fieldpath.NotationDots, maxDepth: 8, arrayRows: 1}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	body := op.RequestBody.Clone()
	if err := body.Validate(); err != nil {
		return form.Form{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedBody, op.ID, err)
	}
	if !isObject(body) {
		return form.Form{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedBody, op.ID, body.DebugString())
	}

	b := &formBuilder{cfg: cfg}
	b.object(nil, body, 0)
	return form.Form{
		ID:       op.ID,
		Action:   op.Path,
		Method:   op.Method,
		Controls: b.controls,
	}, nil
}

type formBuilder struct {
	cfg      formConfig
	controls []form.Control
}

func (b *formBuilder) object(prefix fieldpath.Path, s Schema, depth int) {
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	for _, name := range s.PropertyNames() {
		path := append(prefix.Clone(), fieldpath.Key(name))
		b.field(path, name, s.Properties[name], required[name], depth+1)
	}
}

func (b *formBuilder) field(path fieldpath.Path, name string, s Schema, required bool, depth int) {
	if s.ReadOnly || depth > b.cfg.maxDepth {
		return
	}
	if s.Type == "" && s.Ref != "" && len(s.Properties) == 0 {
		// unresolved or recursive reference
		return
	}
	if isObject(s) {
		b.object(path, s, depth)
		return
	}

	label := s.Title
	if label == "" {
		label = name
	}

	switch s.Type {
	case "array":
		b.array(path, label, s, depth)
	case "boolean":
		controlName := b.name(path)
		b.add(form.Control{Name: controlName, Kind: form.KindHidden, Values: []string{"0"}, Hint: cast.HintBool})
		b.add(form.Control{
			Name:    controlName,
			Kind:    form.KindCheckbox,
			Values:  []string{"1"},
			Checked: s.Default == true,
			Hint:    cast.HintBool,
			ID:      idFor(controlName),
			Label:   label,
		})
	default:
		b.add(b.scalar(path, label, s, required))
	}
}

func (b *formBuilder) array(path fieldpath.Path, label string, s Schema, depth int) {
	if s.Validate() != nil {
		return
	}
	items := s.Items

	if isObject(*items) {
		for row := 0; row < b.cfg.arrayRows; row++ {
			b.object(append(path.Clone(), fieldpath.Index(row)), *items, depth)
		}
		return
	}

	itemPath := append(path.Clone(), fieldpath.Append())
	controlName := b.name(itemPath)
	defaults, _ := s.Default.([]any)

	if len(items.Enum) > 0 {
		selected := make(map[string]bool, len(defaults))
		for _, v := range defaults {
			selected[scalarText(v)] = true
		}
		c := form.Control{
			Name:  controlName,
			Kind:  form.KindSelectMultiple,
			Hint:  hintFor(items.Type),
			ID:    idFor(controlName),
			Label: label,
		}
		for _, v := range items.Enum {
			text := scalarText(v)
			c.Options = append(c.Options, form.Option{Value: text, Label: text, Selected: selected[text]})
			if selected[text] {
				c.Values = append(c.Values, text)
			}
		}
		b.add(c)
		return
	}

	kind := kindFor(*items)
	if len(defaults) == 0 {
		b.add(form.Control{Name: controlName, Kind: kind, Values: []string{""}, Hint: hintFor(items.Type), Label: label})
		return
	}
	for _, v := range defaults {
		b.add(form.Control{Name: controlName, Kind: kind, Values: []string{scalarText(v)}, Hint: hintFor(items.Type), Label: label})
	}
}

func (b *formBuilder) scalar(path fieldpath.Path, label string, s Schema, required bool) form.Control {
	controlName := b.name(path)
	c := form.Control{
		Name:  controlName,
		Kind:  kindFor(s),
		Hint:  hintFor(s.Type),
		ID:    idFor(controlName),
		Label: label,
	}
	value := scalarText(s.Default)

	if len(s.Enum) == 0 {
		c.Values = []string{value}
		return c
	}

	c.Kind = form.KindSelectOne
	if !required {
		c.Options = append(c.Options, form.Option{Value: "", Label: ""})
	}
	for _, v := range s.Enum {
		text := scalarText(v)
		c.Options = append(c.Options, form.Option{Value: text, Label: text})
	}
	chosen := 0
	for i, o := range c.Options {
		if s.Default != nil && o.Value == value {
			chosen = i
			break
		}
	}
	c.Options[chosen].Selected = true
	c.Values = []string{c.Options[chosen].Value}
	return c
}

func (b *formBuilder) name(path fieldpath.Path) string {
	return fieldpath.Render(path, b.cfg.notation)
}

func (b *formBuilder) add(c form.Control) {
	b.controls = append(b.controls, c)
}

func isObject(s Schema) bool {
	return s.Type == "object" || (s.Type == "" && len(s.Properties) > 0)
}

func kindFor(s Schema) form.Kind {
	switch s.Type {
	case "integer", "number":
		return form.KindNumber
	}
	switch strings.ToLower(s.Format) {
	case "email":
		return form.KindEmail
	case "password":
		return form.KindPassword
	case "binary":
		return form.KindFile
	case "textarea", "multiline":
		return form.KindTextarea
	}
	return form.KindText
}

func hintFor(schemaType string) cast.Hint {
	switch schemaType {
	case "integer":
		return cast.HintInt
	case "number":
		return cast.HintFloat
	case "boolean":
		return cast.HintBool
	default:
		return cast.HintNone
	}
}

func scalarText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return cast.FormatNumber(value)
	case float32:
		return cast.FormatNumber(float64(value))
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

// idFor turns a control name into an element id.
func idFor(name string) string {
	replacer := strings.NewReplacer(".", "-", "[", "-", "]", "")
	return strings.Trim(replacer.Replace(name), "-")
}
