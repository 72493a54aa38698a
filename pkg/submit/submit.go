// Package submit sends form snapshots to their action and dispatches the
// response by status. The default 422 handler decodes the validation error
// payload and routes each message to the control it names.
package submit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	formpath "github.com/goliatone/go-formpath"
	"github.com/goliatone/go-formpath/pkg/display"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
)

// Submitter serializes a form, sends it and dispatches the response.
type Submitter struct {
	provider  form.Provider
	transport Transport
	format    payload.Format
	action    string
	method    string
	header    http.Header
	responses Responses
	hidden    []form.HiddenField
	sink      display.Sink
	options   []formpath.Option
	logger    *slog.Logger
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithFormat selects the payload format. Defaults to url-encoded.
func WithFormat(format payload.Format) Option {
	return func(s *Submitter) {
		if format != "" {
			s.format = format
		}
	}
}

// WithAction overrides the form's action URL.
func WithAction(url string) Option {
	return func(s *Submitter) {
		s.action = url
	}
}

// WithMethod overrides the form's method.
func WithMethod(method string) Option {
	return func(s *Submitter) {
		s.method = strings.ToUpper(strings.TrimSpace(method))
	}
}

// WithHeader adds a request header.
func WithHeader(name, value string) Option {
	return func(s *Submitter) {
		s.header.Add(name, value)
	}
}

// WithHidden appends hidden fields (CSRF tokens, versions) to every
// submitted snapshot.
func WithHidden(fields ...form.HiddenField) Option {
	return func(s *Submitter) {
		s.hidden = append(s.hidden, fields...)
	}
}

// WithResponse registers a handler for a status code or class, replacing any
// default for that key.
func WithResponse(key string, h Handler) Option {
	return func(s *Submitter) {
		s.responses.Set(key, h)
	}
}

// WithSink sets where validation messages go. Without one, the default 422
// handler only records its report.
func WithSink(sink display.Sink) Option {
	return func(s *Submitter) {
		s.sink = sink
	}
}

// WithFormOptions sets the serialization and resolution options.
func WithFormOptions(options ...formpath.Option) Option {
	return func(s *Submitter) {
		s.options = append(s.options, options...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Submitter for provider. A 422 handler applying validation
// errors is registered by default.
func New(provider form.Provider, transport Transport, options ...Option) *Submitter {
	s := &Submitter{
		provider:  provider,
		transport: transport,
		format:    payload.FormatURLEncoded,
		header:    make(http.Header),
		responses: make(Responses),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	s.responses.Set("422", s.validationHandler)
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit snapshots the form, sends it and runs the matching response handler.
// A status without a handler is not an error.
func (s *Submitter) Submit(ctx context.Context) (*Exchange, error) {
	if s.provider == nil || s.transport == nil {
		return nil, fmt.Errorf("submit: provider and transport are required")
	}
	f, err := s.provider.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit: snapshot: %w", err)
	}
	f = f.WithHidden(s.hidden...)

	req, err := s.request(f)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("submitting form",
		slog.String("form", f.ID),
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.String("content_type", req.Body.ContentType),
	)

	resp, err := s.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	ex := &Exchange{Form: f, Request: req, Response: resp}
	handler, ok := s.responses.Lookup(resp.StatusCode)
	if !ok {
		s.logger.Debug("no response handler", slog.Int("status", resp.StatusCode))
		return ex, nil
	}
	if err := handler(ctx, ex); err != nil {
		return ex, fmt.Errorf("submit: handle %d: %w", resp.StatusCode, err)
	}
	return ex, nil
}

// Request builds the request Submit would send for f.
func (s *Submitter) Request(f form.Form) (Request, error) {
	return s.request(f)
}

func (s *Submitter) request(f form.Form) (Request, error) {
	method := s.method
	if method == "" {
		method = f.MethodOrDefault()
	}
	action := s.action
	if action == "" {
		action = f.Action
	}
	if action == "" {
		return Request{}, fmt.Errorf("submit: form %q has no action", f.ID)
	}

	format := s.format
	if (method == http.MethodGet || method == http.MethodHead) && format != payload.FormatURLEncoded {
		s.logger.Debug("query submissions are url-encoded", slog.String("format", string(format)))
		format = payload.FormatURLEncoded
	}

	body, err := formpath.Encode(f, format, s.options...)
	if err != nil {
		return Request{}, fmt.Errorf("submit: encode: %w", err)
	}
	return Request{Method: method, URL: action, Header: s.header.Clone(), Body: body}, nil
}

func (s *Submitter) validationHandler(_ context.Context, ex *Exchange) error {
	errs, err := payload.DecodeErrors(ex.Response.Body)
	if err != nil {
		return err
	}
	cfg := formpath.NewConfig(s.options...)
	sink := s.sink
	if sink == nil {
		sink = display.SinkFunc(func(*form.Ref, []string) {})
	}
	report := display.Apply(ex.Form, errs, cfg.Resolver(), sink)
	ex.Report = &report
	if len(report.Unresolved) > 0 {
		s.logger.Debug("error paths without a control", slog.Any("paths", report.Unresolved))
	}
	return nil
}
