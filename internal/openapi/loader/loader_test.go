package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formpath/internal/openapi/loader"
	pkgopenapi "github.com/goliatone/go-formpath/pkg/openapi"
)

const document = "openapi: 3.0.3\n"

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := loader.New(pkgopenapi.NewLoaderOptions())
	doc, err := l.Load(context.Background(), pkgopenapi.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document || doc.Location() != path {
		t.Fatalf("unexpected document %q from %q", doc.Raw(), doc.Location())
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{"specs/openapi.yaml": {Data: []byte(document)}}

	l := loader.New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(files)))
	doc, err := l.Load(context.Background(), pkgopenapi.SourceFromFS("specs/openapi.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document {
		t.Fatalf("unexpected document %q", doc.Raw())
	}

	for _, name := range []string{"/specs/openapi.yaml", "./specs/openapi.yaml"} {
		if _, err := l.Load(context.Background(), pkgopenapi.SourceFromFS(name)); err != nil {
			t.Errorf("load %q: %v", name, err)
		}
	}

	bare := loader.New(pkgopenapi.NewLoaderOptions())
	if _, err := bare.Load(context.Background(), pkgopenapi.SourceFromFS("specs/openapi.yaml")); !errors.Is(err, loader.ErrNoFileSystem) {
		t.Fatalf("error = %v, want ErrNoFileSystem", err)
	}
}

func TestLoadRejectsEmptyDocument(t *testing.T) {
	files := fstest.MapFS{"blank.yaml": {Data: []byte("  \n")}}

	l := loader.New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithFileSystem(files)))
	_, err := l.Load(context.Background(), pkgopenapi.SourceFromFS("blank.yaml"))
	if !errors.Is(err, loader.ErrEmptyDocument) {
		t.Fatalf("error = %v, want ErrEmptyDocument", err)
	}
	if !strings.Contains(err.Error(), `"blank.yaml"`) {
		t.Fatalf("error %q does not name the source", err)
	}
}

func TestLoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(document))
	}))
	defer server.Close()

	src, err := pkgopenapi.SourceFromURL(server.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	disabled := loader.New(pkgopenapi.NewLoaderOptions())
	if _, err := disabled.Load(context.Background(), src); !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}

	l := loader.New(pkgopenapi.NewLoaderOptions(pkgopenapi.WithHTTPClient(server.Client())))
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != document {
		t.Fatalf("unexpected document %q", doc.Raw())
	}

	missing, err := pkgopenapi.SourceFromURL(server.URL + "/missing")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := l.Load(context.Background(), missing); err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := loader.New(pkgopenapi.NewLoaderOptions())
	if _, err := l.Load(ctx, pkgopenapi.SourceFromFile("openapi.yaml")); err == nil {
		t.Fatalf("expected context error")
	}
}
