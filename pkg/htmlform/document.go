// Package htmlform reads form snapshots out of HTML documents and writes
// validation messages back into them.
//
// A Document wraps a parsed page. Each Form selected from it is a
// form.Provider (every Snapshot re-reads the current markup) and a
// display.Sink that annotates invalid controls with
// `data-validation-message` and `aria-invalid` attributes.
package htmlform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrFormNotFound is returned when a selector matches no form element.
var ErrFormNotFound = errors.New("htmlform: form not found")

const (
	// DefaultHintAttribute carries the type hint on controls.
	DefaultHintAttribute = "data-type"
	// MessageAttribute receives the joined validation message of a control.
	MessageAttribute = "data-validation-message"
	// FormMessageAttribute receives form-level messages on the form element.
	FormMessageAttribute = "data-form-errors"
	// InvalidAttribute marks annotated controls.
	InvalidAttribute = "aria-invalid"
)

// Option configures a Document.
type Option func(*Document)

// WithHintAttribute changes the attribute type hints are read from. An empty
// name disables hints.
func WithHintAttribute(name string) Option {
	return func(d *Document) {
		d.hintAttr = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithLogger attaches a logger for annotation misses.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Document is a parsed HTML page. It is safe for concurrent use; snapshots
// and annotations serialize on the document.
type Document struct {
	mu       sync.RWMutex
	root     *html.Node
	hintAttr string
	logger   *slog.Logger
}

// Parse reads an HTML document.
func Parse(r io.Reader, options ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmlform: parse document: %w", err)
	}
	d := &Document{root: root, hintAttr: DefaultHintAttribute}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// ParseString reads an HTML document from a string.
func ParseString(src string, options ...Option) (*Document, error) {
	return Parse(strings.NewReader(src), options...)
}

// Forms lists the id (or name) of every form in document order. Anonymous
// forms are listed as "".
func (d *Document) Forms() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []string
	walk(d.root, func(n *html.Node) bool {
		if isElement(n, atom.Form) {
			out = append(out, formKey(n))
		}
		return true
	})
	return out
}

// Form selects a form by id or name. An empty selector picks the first form.
func (d *Document) Form(selector string) (*Form, error) {
	selector = strings.TrimSpace(selector)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if !isElement(n, atom.Form) {
			return true
		}
		if selector == "" || attr(n, "id") == selector || attr(n, "name") == selector {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		if selector == "" {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, selector)
	}
	return &Form{doc: d, node: found}, nil
}

// Render writes the document, including any annotations, to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String renders the document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func formKey(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		return id
	}
	return attr(n, "name")
}

// walk visits n and its descendants in document order. Returning false from
// visit skips the node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == a
}

func attr(n *html.Node, key string) string {
	value, _ := lookupAttr(n, key)
	return value
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// textContent concatenates the text beneath n.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// collapseSpace strips and collapses ASCII whitespace the way option labels
// and values are normalized.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
