package display

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// DefaultSummaryTemplate renders an alert box listing form-level messages
// followed by one entry per invalid control. Messages are sanitized before
// rendering and written with the safe filter; labels are auto-escaped.
const DefaultSummaryTemplate = `{% if form_errors or fields %}<div class="form-errors" role="alert">
{% if form_errors %}<ul class="form-errors__form">{% for message in form_errors %}<li>{{ message|safe }}</li>{% endfor %}</ul>
{% endif %}{% if fields %}<ul class="form-errors__fields">{% for field in fields %}<li>{% if field.Anchor %}<a href="#{{ field.Anchor }}">{{ field.Label }}</a>{% else %}{{ field.Label }}{% endif %}: {{ field.Message|safe }}</li>{% endfor %}</ul>
{% endif %}</div>{% endif %}`

// SummaryField is one invalid control as seen by the summary template.
type SummaryField struct {
	Name     string
	Position int
	Label    string
	Anchor   string
	Message  string
}

// SummaryOption configures a Summary.
type SummaryOption func(*summaryConfig)

type summaryConfig struct {
	template string
	policy   *bluemonday.Policy
}

// WithSummaryTemplate replaces the default pongo2 template.
func WithSummaryTemplate(src string) SummaryOption {
	return func(cfg *summaryConfig) {
		if strings.TrimSpace(src) != "" {
			cfg.template = src
		}
	}
}

// WithPolicy replaces the sanitizer policy applied to messages. The default
// is bluemonday's UGC policy.
func WithPolicy(policy *bluemonday.Policy) SummaryOption {
	return func(cfg *summaryConfig) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Summary collects messages and renders them as an HTML error summary.
type Summary struct {
	mu       sync.Mutex
	form     form.Form
	tmpl     *pongo2.Template
	policy   *bluemonday.Policy
	fields   []SummaryField
	messages []string
}

var _ Sink = (*Summary)(nil)

// NewSummary builds a summary sink for f. Control labels and ids are read
// from f.
func NewSummary(f form.Form, options ...SummaryOption) (*Summary, error) {
	cfg := summaryConfig{template: DefaultSummaryTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	tmpl, err := pongo2.FromString(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("display: parse summary template: %w", err)
	}
	return &Summary{form: f, tmpl: tmpl, policy: cfg.policy}, nil
}

// Display records messages for the summary.
func (s *Summary) Display(ref *form.Ref, messages []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ref == nil {
		s.messages = payload.MergeFormErrors(s.messages, messages...)
		return
	}

	field := SummaryField{
		Name:     ref.Name,
		Position: ref.Position,
		Label:    ref.Name,
		Message:  payload.JoinMessages(messages),
	}
	if control, ok := s.form.Control(*ref); ok {
		if label := strings.TrimSpace(control.Label); label != "" {
			field.Label = label
		}
		field.Anchor = control.ID
	}
	s.fields = append(s.fields, field)
}

// Fields returns the recorded field entries, unsanitized.
func (s *Summary) Fields() []SummaryField {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SummaryField, len(s.fields))
	copy(out, s.fields)
	return out
}

// Render executes the template. When out is given the result is written to
// each writer as well as returned.
func (s *Summary) Render(out ...io.Writer) (string, error) {
	s.mu.Lock()
	fields := make([]SummaryField, len(s.fields))
	for i, field := range s.fields {
		field.Message = s.policy.Sanitize(field.Message)
		fields[i] = field
	}
	messages := make([]string, len(s.messages))
	for i, message := range s.messages {
		messages[i] = s.policy.Sanitize(message)
	}
	s.mu.Unlock()

	var buf bytes.Buffer
	err := s.tmpl.ExecuteWriter(pongo2.Context{
		"form_errors": messages,
		"fields":      fields,
		"form_id":     s.form.ID,
	}, &buf)
	if err != nil {
		return "", fmt.Errorf("display: render summary: %w", err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}
