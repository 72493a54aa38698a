package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formpath/pkg/payload"
)

// maxResponseSize caps response bodies read by HTTPTransport.
const maxResponseSize = 4 << 20

// Request is an encoded form submission.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   payload.Body
}

// Response is the server's answer to a submission.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends a submission and returns the response. A non-2xx status is
// a response, not an error; errors are reserved for requests that never
// completed.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

// Send calls fn.
func (fn TransportFunc) Send(ctx context.Context, req Request) (Response, error) {
	return fn(ctx, req)
}

// HTTPTransport sends submissions with net/http. GET and HEAD requests carry
// the body as the query string.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client, a client with the given timeout when nil.
func NewHTTPTransport(client *http.Client, timeout time.Duration) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPTransport{client: client}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (Response, error) {
	if req.URL == "" {
		return Response{}, fmt.Errorf("submit: request url is required")
	}
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	target := req.URL
	var body io.Reader
	if method == http.MethodGet || method == http.MethodHead {
		if len(req.Body.Data) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + string(req.Body.Data)
		}
	} else {
		body = bytes.NewReader(req.Body.Data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Response{}, fmt.Errorf("submit: build request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if body != nil && req.Body.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.Body.ContentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("submit: send: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Response{}, fmt.Errorf("submit: read response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
