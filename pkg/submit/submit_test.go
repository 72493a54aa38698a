package submit_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	formpath "github.com/goliatone/go-formpath"
	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/display"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/payload"
	"github.com/goliatone/go-formpath/pkg/submit"
)

func signupForm(action string) form.Form {
	return form.Form{
		ID:     "signup",
		Action: action,
		Controls: []form.Control{
			{Name: "user.email", Kind: form.KindEmail, Values: []string{"ann@example.com"}},
			{Name: "user.age", Kind: form.KindText, Values: []string{"30"}, Hint: cast.HintInt},
			{Name: "tags[]", Kind: form.KindText, Values: []string{"a"}},
			{Name: "tags[]", Kind: form.KindText, Values: []string{"b"}},
		},
	}
}

type capturedRequest struct {
	Method      string
	Query       string
	ContentType string
	Body        string
}

func recordingServer(t *testing.T, status int, body string, seen *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*seen = capturedRequest{
			Method:      r.Method,
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(data),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSubmitEncodesByFormat(t *testing.T) {
	tests := []struct {
		name   string
		method string
		format payload.Format
		want   capturedRequest
	}{
		{
			name:   "url encoded post",
			format: payload.FormatURLEncoded,
			want: capturedRequest{
				Method:      "POST",
				ContentType: "application/x-www-form-urlencoded",
				Body:        "user.email=ann%40example.com&user.age=30&tags%5B%5D=a&tags%5B%5D=b",
			},
		},
		{
			name:   "json post",
			format: payload.FormatJSON,
			want: capturedRequest{
				Method:      "POST",
				ContentType: "application/json",
				Body:        `{"user":{"email":"ann@example.com","age":30},"tags":["a","b"]}`,
			},
		},
		{
			name:   "get uses the query string",
			method: "get",
			format: payload.FormatJSON,
			want: capturedRequest{
				Method: "GET",
				Query:  "user.email=ann%40example.com&user.age=30&tags%5B%5D=a&tags%5B%5D=b",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen capturedRequest
			server := recordingServer(t, http.StatusNoContent, "", &seen)

			s := submit.New(
				form.Static(signupForm(server.URL)),
				submit.NewHTTPTransport(server.Client(), 0),
				submit.WithFormat(tt.format),
				submit.WithMethod(tt.method),
			)
			ex, err := s.Submit(context.Background())
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if ex.Response.StatusCode != http.StatusNoContent {
				t.Fatalf("status = %d", ex.Response.StatusCode)
			}
			if diff := cmp.Diff(tt.want, seen); diff != "" {
				t.Fatalf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubmitAppliesValidationErrors(t *testing.T) {
	const body = `{"message":"The given data was invalid.","errors":{"user.email":["Taken"],"tags.1":"Too short","captcha":["Missing"]}}`
	var seen capturedRequest
	server := recordingServer(t, http.StatusUnprocessableEntity, body, &seen)

	type shown struct {
		Name     string
		Position int
		Messages []string
	}
	var got []shown
	sink := display.SinkFunc(func(ref *form.Ref, messages []string) {
		if ref == nil {
			got = append(got, shown{Name: "<form>", Messages: messages})
			return
		}
		got = append(got, shown{Name: ref.Name, Position: ref.Position, Messages: messages})
	})

	s := submit.New(
		form.Static(signupForm(server.URL)),
		submit.NewHTTPTransport(server.Client(), 0),
		submit.WithSink(sink),
	)
	ex, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ex.Report == nil {
		t.Fatalf("expected a display report")
	}

	want := []shown{
		{Name: "user.email", Messages: []string{"Taken"}},
		{Name: "tags[]", Position: 1, Messages: []string{"Too short"}},
		{Name: "<form>", Messages: []string{"The given data was invalid.", "Missing"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("displayed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"captcha"}, ex.Report.Unresolved); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitResolvesWithConfiguredNotation(t *testing.T) {
	f := form.Form{Action: "/profile", Controls: []form.Control{
		{Name: "user[email]", Kind: form.KindText, Values: []string{"x"}},
	}}
	transport := submit.TransportFunc(func(context.Context, submit.Request) (submit.Response, error) {
		return submit.Response{StatusCode: 422, Body: []byte(`{"errors":{"user.email":["Invalid"]}}`)}, nil
	})

	validity := display.NewValidity()
	s := submit.New(form.Static(f), transport,
		submit.WithSink(validity),
		submit.WithFormOptions(formpath.WithNotation(fieldpath.NotationBrackets)),
	)
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := validity.Message(form.Ref{Name: "user[email]", Index: 0}); got != "Invalid" {
		t.Fatalf("message = %q, want Invalid", got)
	}
}

func TestResponsesLookup(t *testing.T) {
	var called []string
	handler := func(name string) submit.Handler {
		return func(context.Context, *submit.Exchange) error {
			called = append(called, name)
			return nil
		}
	}
	responses := submit.Responses{}
	responses.Set("4xx", handler("4XX"))
	responses.Set("404", handler("404"))
	responses.Set("2XX", handler("2XX"))

	for _, status := range []int{404, 400, 201, 500} {
		if h, ok := responses.Lookup(status); ok {
			_ = h(context.Background(), nil)
		}
	}
	if diff := cmp.Diff([]string{"404", "4XX", "2XX"}, called); diff != "" {
		t.Fatalf("dispatch mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitHandlerOverridesAndErrors(t *testing.T) {
	boom := errors.New("boom")
	transport := submit.TransportFunc(func(context.Context, submit.Request) (submit.Response, error) {
		return submit.Response{StatusCode: 422, Body: []byte("not json")}, nil
	})
	f := form.Static(form.Form{Action: "/x"})

	// The default handler reports malformed payloads.
	if _, err := submit.New(f, transport).Submit(context.Background()); !errors.Is(err, payload.ErrMalformedErrors) {
		t.Fatalf("error = %v, want ErrMalformedErrors", err)
	}

	// An exact handler replaces the default one.
	s := submit.New(f, transport, submit.WithResponse("422", func(context.Context, *submit.Exchange) error {
		return boom
	}))
	if _, err := s.Submit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestSubmitRequiresAction(t *testing.T) {
	transport := submit.TransportFunc(func(context.Context, submit.Request) (submit.Response, error) {
		t.Fatalf("transport should not be called")
		return submit.Response{}, nil
	})
	_, err := submit.New(form.Static(form.Form{ID: "orphan"}), transport).Submit(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no action") {
		t.Fatalf("expected missing action error, got %v", err)
	}
}

func TestSubmitHeadersAndCancellation(t *testing.T) {
	var header http.Header
	transport := submit.TransportFunc(func(_ context.Context, req submit.Request) (submit.Response, error) {
		header = req.Header
		return submit.Response{StatusCode: 200}, nil
	})
	s := submit.New(form.Static(signupForm("/signup")), transport, submit.WithHeader("X-Requested-With", "XMLHttpRequest"))
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := header.Get("X-Requested-With"); got != "XMLHttpRequest" {
		t.Fatalf("header = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Submit(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestSubmitAppendsHiddenFields(t *testing.T) {
	var body string
	transport := submit.TransportFunc(func(_ context.Context, req submit.Request) (submit.Response, error) {
		body = string(req.Body.Data)
		return submit.Response{StatusCode: http.StatusOK}, nil
	})
	f := form.Form{Action: "/x", Controls: []form.Control{
		{Name: "q", Kind: form.KindText, Values: []string{"go"}},
	}}
	s := submit.New(form.Static(f), transport, submit.WithHidden(form.CSRFToken("_csrf", "t0k")))
	ex, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if body != "q=go&_csrf=t0k" {
		t.Fatalf("body = %q", body)
	}
	if len(ex.Form.Controls) != 2 {
		t.Fatalf("expected hidden control on the exchange form, got %+v", ex.Form.Controls)
	}
}
