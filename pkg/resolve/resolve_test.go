package resolve_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/form"
	"github.com/goliatone/go-formpath/pkg/resolve"
)

func controls(names ...string) form.Form {
	f := form.Form{}
	for _, name := range names {
		f.Controls = append(f.Controls, form.Control{Name: name, Kind: form.KindText})
	}
	return f
}

func TestCandidates(t *testing.T) {
	cases := []struct {
		path     string
		notation fieldpath.Notation
		want     []resolve.Candidate
	}{
		{
			path: "items[1]",
			want: []resolve.Candidate{
				{Name: "items[1]"},
				{Name: "items[]", Position: 1},
			},
		},
		{
			path: "items.2.name",
			want: []resolve.Candidate{
				{Name: "items.2.name"},
				{Name: "items[2].name"},
				{Name: "items[].name", Position: 2},
			},
		},
		{
			path: "groups[1].items[2]",
			want: []resolve.Candidate{
				{Name: "groups[1].items[2]"},
				{Name: "groups[].items[2]", Position: 1},
				{Name: "groups[1].items[]", Position: 2},
			},
		},
		{
			path: "items[*].name",
			want: []resolve.Candidate{
				{Name: "items[*].name"},
				{Name: "items[].name"},
			},
		},
		{
			path:     "user.addresses.0.street",
			notation: fieldpath.NotationBrackets,
			want: []resolve.Candidate{
				{Name: "user.addresses.0.street"},
				{Name: "user[addresses][0][street]"},
				{Name: "user[addresses][][street]"},
			},
		},
		{
			path: " email ",
			want: []resolve.Candidate{{Name: "email"}},
		},
		{
			path: "",
			want: nil,
		},
	}

	for _, tc := range cases {
		got := resolve.Candidates(tc.path, tc.notation)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Candidates(%q) mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestResolveRepeatableGroup(t *testing.T) {
	f := controls("title", "items[]", "items[]", "items[]")

	ref, ok := resolve.Resolve(f, "items[1]")
	if !ok {
		t.Fatalf("expected items[1] to resolve")
	}
	want := form.Ref{Name: "items[]", Position: 1, Index: 2}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Fatalf("ref mismatch (-want +got):\n%s", diff)
	}

	if _, ok := resolve.Resolve(f, "items[3]"); ok {
		t.Fatalf("items[3] must not resolve with three instances")
	}
}

func TestResolveExactIndexWins(t *testing.T) {
	f := controls("items[]", "items[]", "items[1]")

	ref, ok := resolve.Resolve(f, "items[1]")
	if !ok {
		t.Fatalf("expected items[1] to resolve")
	}
	if ref.Name != "items[1]" || ref.Index != 2 {
		t.Fatalf("expected the literal control, got %+v", ref)
	}
}

func TestResolveDottedNumericPath(t *testing.T) {
	literal := controls("items[2].name")
	ref, ok := resolve.Resolve(literal, "items.2.name")
	if !ok || ref.Name != "items[2].name" {
		t.Fatalf("expected bracket-normalized match, got %+v (ok=%v)", ref, ok)
	}

	repeated := controls("items[].name", "items[].name", "items[].name")
	ref, ok = resolve.Resolve(repeated, "items.2.name")
	if !ok || ref.Index != 2 {
		t.Fatalf("expected third repeated control, got %+v (ok=%v)", ref, ok)
	}
}

func TestResolveWildcardTargetsFirst(t *testing.T) {
	f := controls("tags[]", "tags[]")
	ref, ok := resolve.Resolve(f, "tags.*")
	if !ok || ref.Position != 0 {
		t.Fatalf("expected first tags[] control, got %+v (ok=%v)", ref, ok)
	}
}

func TestResolveBracketNotation(t *testing.T) {
	f := controls("user[addresses][][street]", "user[addresses][][street]")
	r := resolve.New(resolve.WithNotation(fieldpath.NotationBrackets))

	ref, ok := r.Resolve(f, "user.addresses.1.street")
	if !ok || ref.Position != 1 {
		t.Fatalf("expected second street control, got %+v (ok=%v)", ref, ok)
	}
}

func TestResolveMissing(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := resolve.New(resolve.WithLogger(logger))

	if _, ok := r.Resolve(controls("name", "email"), "missing.path"); ok {
		t.Fatalf("missing.path must not resolve")
	}
	if !strings.Contains(buf.String(), "path=missing.path") {
		t.Fatalf("expected a debug record for the unresolved path, got %q", buf.String())
	}
}
