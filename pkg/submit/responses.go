package submit

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-formpath/pkg/display"
	"github.com/goliatone/go-formpath/pkg/form"
)

// Exchange is one submission: the snapshot it was built from, the request and
// the response. Handlers may record a display report on it.
type Exchange struct {
	Form     form.Form
	Request  Request
	Response Response
	Report   *display.Report
}

// Handler reacts to a response.
type Handler func(ctx context.Context, ex *Exchange) error

// Responses maps status keys to handlers. A key is either an exact status
// code ("204") or a status class ("2XX").
type Responses map[string]Handler

// Set registers h under key. Class keys are case-insensitive.
func (r Responses) Set(key string, h Handler) {
	r[strings.ToUpper(strings.TrimSpace(key))] = h
}

// Lookup returns the handler for status: the exact code first, then its
// class.
func (r Responses) Lookup(status int) (Handler, bool) {
	if h, ok := r[strconv.Itoa(status)]; ok && h != nil {
		return h, true
	}
	if h, ok := r[strconv.Itoa(status/100)+"XX"]; ok && h != nil {
		return h, true
	}
	return nil, false
}
