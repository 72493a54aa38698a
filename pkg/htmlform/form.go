package htmlform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/display"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// ErrControlNotFound is returned when a reference no longer matches the
// document.
var ErrControlNotFound = errors.New("htmlform: control not found")

// Form is one form element of a Document.
type Form struct {
	doc  *Document
	node *html.Node
}

var (
	_ form.Provider = (*Form)(nil)
	_ display.Sink  = (*Form)(nil)
)

// Snapshot reads the form's controls in document order, including controls
// outside the form element that point at it through a `form` attribute.
func (f *Form) Snapshot(ctx context.Context) (form.Form, error) {
	if err := ctx.Err(); err != nil {
		return form.Form{}, err
	}

	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()

	out := form.Form{
		ID:     formKey(f.node),
		Action: attr(f.node, "action"),
		Method: attr(f.node, "method"),
	}
	labels := labelsByID(f.doc.root)
	for _, n := range f.controls() {
		out.Controls = append(out.Controls, f.control(n, labels))
	}
	return out, nil
}

// Display annotates the referenced control with the joined messages. A nil
// ref annotates the form element.
func (f *Form) Display(ref *form.Ref, messages []string) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	message := payload.JoinMessages(messages)
	if ref == nil {
		setAttr(f.node, FormMessageAttribute, message)
		return
	}
	n, err := f.lookup(*ref)
	if err != nil {
		f.doc.log().Debug("annotation skipped",
			slog.String("name", ref.Name),
			slog.Int("index", ref.Index),
		)
		return
	}
	setAttr(n, MessageAttribute, message)
	setAttr(n, InvalidAttribute, "true")
}

// Changed clears the annotation of the referenced control.
func (f *Form) Changed(ref form.Ref) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	if n, err := f.lookup(ref); err == nil {
		removeAttr(n, MessageAttribute)
		removeAttr(n, InvalidAttribute)
	}
}

// Clear removes every annotation written by Display.
func (f *Form) Clear() {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	removeAttr(f.node, FormMessageAttribute)
	for _, n := range f.controls() {
		removeAttr(n, MessageAttribute)
		removeAttr(n, InvalidAttribute)
	}
}

// Update writes the state of c into the referenced control: the value
// attribute for inputs, the text of a textarea, the checked flag of
// checkables and the selected options of a select.
func (f *Form) Update(ref form.Ref, c form.Control) error {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	n, err := f.lookup(ref)
	if err != nil {
		return err
	}

	switch n.DataAtom {
	case atom.Textarea:
		for child := n.FirstChild; child != nil; {
			next := child.NextSibling
			n.RemoveChild(child)
			child = next
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: c.Value()})
	case atom.Select:
		wanted := make(map[string]struct{}, len(c.Values))
		for _, v := range c.Values {
			wanted[v] = struct{}{}
		}
		for _, opt := range options(n) {
			if _, ok := wanted[optionValue(opt)]; ok {
				setAttr(opt, "selected", "")
			} else {
				removeAttr(opt, "selected")
			}
		}
	default:
		kind := form.ParseKind(attr(n, "type"))
		if kind.Checkable() {
			if c.Checked {
				setAttr(n, "checked", "")
			} else {
				removeAttr(n, "checked")
			}
			return nil
		}
		setAttr(n, "value", c.Value())
	}
	return nil
}

func (f *Form) lookup(ref form.Ref) (*html.Node, error) {
	nodes := f.controls()
	if ref.Index < 0 || ref.Index >= len(nodes) || attr(nodes[ref.Index], "name") != ref.Name {
		return nil, fmt.Errorf("%w: %s#%d", ErrControlNotFound, ref.Name, ref.Position)
	}
	return nodes[ref.Index], nil
}

// controls lists the listed form-associated elements of the form in
// document order.
func (f *Form) controls() []*html.Node {
	id := attr(f.node, "id")
	var out []*html.Node
	walk(f.doc.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.DataAtom {
		case atom.Input, atom.Select, atom.Textarea, atom.Button:
		case atom.Template:
			return false
		default:
			return true
		}
		if owner, ok := lookupAttr(n, "form"); ok {
			if id != "" && owner == id {
				out = append(out, n)
			}
			return false
		}
		if isAncestor(f.node, n) {
			out = append(out, n)
		}
		return false
	})
	return out
}

func (f *Form) control(n *html.Node, labels map[string]string) form.Control {
	c := form.Control{
		Name:     attr(n, "name"),
		ID:       attr(n, "id"),
		Disabled: hasAttr(n, "disabled") || disabledByFieldset(n),
	}
	if f.doc.hintAttr != "" {
		c.Hint = cast.ParseHint(attr(n, f.doc.hintAttr))
	}
	c.Label = labels[c.ID]
	if c.Label == "" {
		c.Label = wrappingLabel(n)
	}

	switch n.DataAtom {
	case atom.Textarea:
		c.Kind = form.KindTextarea
		c.Values = []string{textContent(n)}
	case atom.Select:
		selectControl(n, &c)
	case atom.Button:
		c.Kind = buttonKind(attr(n, "type"))
		c.Values = []string{attr(n, "value")}
	default:
		c.Kind = form.ParseKind(attr(n, "type"))
		value, ok := lookupAttr(n, "value")
		if c.Kind.Checkable() {
			c.Checked = hasAttr(n, "checked")
			if !ok {
				value = "on"
			}
		}
		c.Values = []string{value}
	}
	return c
}

func selectControl(n *html.Node, c *form.Control) {
	multiple := hasAttr(n, "multiple")
	c.Kind = form.KindSelectOne
	if multiple {
		c.Kind = form.KindSelectMultiple
	}

	opts := options(n)
	firstEnabled := -1
	for _, opt := range opts {
		o := form.Option{
			Value:    optionValue(opt),
			Label:    optionLabel(opt),
			Selected: hasAttr(opt, "selected"),
			Disabled: hasAttr(opt, "disabled") || (isElement(opt.Parent, atom.Optgroup) && hasAttr(opt.Parent, "disabled")),
		}
		if firstEnabled < 0 && !o.Disabled {
			firstEnabled = len(c.Options)
		}
		c.Options = append(c.Options, o)
	}

	if !multiple {
		// A single select keeps only the last selected option.
		last := -1
		for i, o := range c.Options {
			if o.Selected {
				last = i
			}
		}
		for i := range c.Options {
			c.Options[i].Selected = i == last
		}
		if last < 0 && displaySize(n) <= 1 && firstEnabled >= 0 {
			c.Options[firstEnabled].Selected = true
		}
	}

	for _, o := range c.Options {
		if o.Selected && !o.Disabled {
			c.Values = append(c.Values, o.Value)
		}
	}
}

func options(sel *html.Node) []*html.Node {
	var out []*html.Node
	walk(sel, func(n *html.Node) bool {
		if isElement(n, atom.Option) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func optionValue(opt *html.Node) string {
	if value, ok := lookupAttr(opt, "value"); ok {
		return value
	}
	return collapseSpace(textContent(opt))
}

func optionLabel(opt *html.Node) string {
	if label, ok := lookupAttr(opt, "label"); ok {
		return label
	}
	return collapseSpace(textContent(opt))
}

func displaySize(sel *html.Node) int {
	size, err := strconv.Atoi(strings.TrimSpace(attr(sel, "size")))
	if err != nil || size < 1 {
		return 1
	}
	return size
}

// disabledByFieldset reports whether a disabled fieldset ancestor disables n.
// Controls inside the fieldset's first legend stay enabled.
func disabledByFieldset(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if !isElement(p, atom.Fieldset) || !hasAttr(p, "disabled") {
			continue
		}
		if legend := firstLegend(p); legend != nil && isAncestor(legend, n) {
			continue
		}
		return true
	}
	return false
}

func firstLegend(fieldset *html.Node) *html.Node {
	for c := fieldset.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, atom.Legend) {
			return c
		}
	}
	return nil
}

func isAncestor(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func labelsByID(root *html.Node) map[string]string {
	labels := make(map[string]string)
	walk(root, func(n *html.Node) bool {
		if !isElement(n, atom.Label) {
			return true
		}
		if target := attr(n, "for"); target != "" {
			if _, exists := labels[target]; !exists {
				labels[target] = labelText(n)
			}
		}
		return false
	})
	return labels
}

func wrappingLabel(n *html.Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, atom.Label) {
			return labelText(p)
		}
		if isElement(p, atom.Form) {
			break
		}
	}
	return ""
}

// labelText is the text of a label without the text of nested controls.
func labelText(label *html.Node) string {
	var b strings.Builder
	walk(label, func(n *html.Node) bool {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case isElement(n, atom.Select), isElement(n, atom.Textarea):
			return false
		}
		return true
	})
	return collapseSpace(b.String())
}

// buttonKind maps a button type attribute onto a kind. Missing and unknown
// types act as submit buttons.
func buttonKind(raw string) form.Kind {
	switch kind := form.ParseKind(raw); kind {
	case form.KindReset, form.KindButton:
		return kind
	default:
		return form.KindSubmit
	}
}
