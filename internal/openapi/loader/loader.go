package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	pkgopenapi "github.com/goliatone/go-formpath/pkg/openapi"
)

var (
	// ErrHTTPDisabled reports a URL source on a loader built without an HTTP
	// client or fallback.
	ErrHTTPDisabled = errors.New("formpath openapi: http support disabled")
	// ErrNoFileSystem reports an fs.FS source on a loader built without one.
	ErrNoFileSystem = errors.New("formpath openapi: filesystem is not configured")
	// ErrEmptyDocument reports a source that yielded no document bytes, which
	// cannot describe any form.
	ErrEmptyDocument = errors.New("formpath openapi: empty document")
)

// Loader reads the OpenAPI documents forms are derived from. Files, fs.FS
// entries and URLs are supported; URLs only when an HTTP client was given or
// the fallback was enabled. Construction helpers live in the root formpath
// package.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options pkgopenapi.LoaderOptions) pkgopenapi.Loader {
	l := &Loader{fs: options.FileSystem, timeout: options.RequestTimeout}

	switch {
	case options.HTTPClient != nil:
		client := *options.HTTPClient
		if l.timeout > 0 && client.Timeout == 0 {
			client.Timeout = l.timeout
		}
		l.http = &client
	case options.AllowHTTPFallback:
		l.http = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads the document behind src. Errors name the source location.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("formpath openapi: source is nil")
	}

	data, err := l.read(ctx, src)
	if err == nil && len(bytes.TrimSpace(data)) == 0 {
		err = ErrEmptyDocument
	}
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("load %s %q: %w", src.Kind(), src.Location(), err)
	}
	return pkgopenapi.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src pkgopenapi.Source) ([]byte, error) {
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		return loadFile(ctx, src.Location())
	case pkgopenapi.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	case pkgopenapi.SourceKindURL:
		if l.http == nil {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		return nil, fmt.Errorf("formpath openapi: unsupported source kind %q", src.Kind())
	}
}
