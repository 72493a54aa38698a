package openapi_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/openapi"
	"github.com/goliatone/go-formpath/pkg/payload"
)

func TestFormForControls(t *testing.T) {
	op := openapi.MustNewOperation("updateProfile", "PATCH", "/profile", openapi.Schema{
		Type:     "object",
		Required: []string{"role"},
		Properties: map[string]openapi.Schema{
			"age":      {Type: "integer"},
			"role":     {Type: "string", Enum: []any{"admin", "user"}, Default: "user"},
			"password": {Type: "string", Format: "password"},
			"scores": {
				Type:    "array",
				Items:   &openapi.Schema{Type: "number"},
				Default: []any{1.5, 2.0},
			},
			"ref": {Ref: "#/components/schemas/Missing"},
		},
	})

	f, err := openapi.FormFor(op)
	if err != nil {
		t.Fatalf("form for: %v", err)
	}

	want := []form.Control{
		{
			Name: "role", Kind: form.KindSelectOne, Values: []string{"user"}, ID: "role", Label: "role",
			Options: []form.Option{{Value: "admin", Label: "admin"}, {Value: "user", Label: "user", Selected: true}},
		},
		{Name: "age", Kind: form.KindNumber, Values: []string{""}, Hint: cast.HintInt, ID: "age", Label: "age"},
		{Name: "password", Kind: form.KindPassword, Values: []string{""}, ID: "password", Label: "password"},
		{Name: "scores[]", Kind: form.KindNumber, Values: []string{"1.5"}, Hint: cast.HintFloat, Label: "scores"},
		{Name: "scores[]", Kind: form.KindNumber, Values: []string{"2"}, Hint: cast.HintFloat, Label: "scores"},
	}
	if diff := cmp.Diff(want, f.Controls); diff != "" {
		t.Fatalf("controls mismatch (-want +got):\n%s", diff)
	}
	if f.ID != "updateProfile" || f.Method != "PATCH" || f.Action != "/profile" {
		t.Fatalf("unexpected form header %+v", f)
	}
}

func TestFormForArrayRowsAndDepth(t *testing.T) {
	nested := openapi.Schema{Type: "object", Properties: map[string]openapi.Schema{
		"line": {Type: "object", Properties: map[string]openapi.Schema{
			"sku": {Type: "string"},
		}},
	}}
	op := openapi.MustNewOperation("op", "POST", "/", openapi.Schema{
		Type: "object",
		Properties: map[string]openapi.Schema{
			"rows": {Type: "array", Items: &nested},
		},
	})

	f, err := openapi.FormFor(op, openapi.WithArrayRows(2))
	if err != nil {
		t.Fatalf("form for: %v", err)
	}
	var names []string
	for _, c := range f.Controls {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"rows[0].line.sku", "rows[1].line.sku"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	shallow, err := openapi.FormFor(op, openapi.WithMaxDepth(2))
	if err != nil {
		t.Fatalf("form for: %v", err)
	}
	if len(shallow.Controls) != 0 {
		t.Fatalf("expected depth limit to drop nested controls, got %+v", shallow.Controls)
	}
}

func TestFormForRejectsScalarBodies(t *testing.T) {
	op := openapi.MustNewOperation("op", "POST", "/", openapi.Schema{Type: "string"})
	if _, err := openapi.FormFor(op); !errors.Is(err, openapi.ErrUnsupportedBody) {
		t.Fatalf("error = %v, want ErrUnsupportedBody", err)
	}
}

func TestOperationFormat(t *testing.T) {
	cases := map[string]payload.Format{
		"":                                  payload.FormatJSON,
		"application/json":                  payload.FormatJSON,
		"application/x-www-form-urlencoded": payload.FormatURLEncoded,
		"multipart/form-data":               payload.FormatMultipart,
	}
	for contentType, want := range cases {
		op := openapi.Operation{ContentType: contentType}
		if got := op.Format(); got != want {
			t.Errorf("Format(%q) = %q, want %q", contentType, got, want)
		}
	}
}

func TestParseSource(t *testing.T) {
	src, err := openapi.ParseSource("https://example.com/openapi.yaml")
	if err != nil || src.Kind() != openapi.SourceKindURL {
		t.Fatalf("url source = %v, %v", src, err)
	}
	src, err = openapi.ParseSource("specs/openapi.yaml")
	if err != nil || src.Kind() != openapi.SourceKindFile || src.Location() != "specs/openapi.yaml" {
		t.Fatalf("file source = %v, %v", src, err)
	}
	if _, err := openapi.ParseSource(" "); err == nil {
		t.Fatalf("expected error for empty source")
	}
}
