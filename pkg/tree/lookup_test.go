package tree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/tree"
)

func TestLookup(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"items[0].name", cast.String("a")},
		pair{"items[2].name", cast.String("c")},
		pair{"owner.email", cast.String("ann@example.com")},
		pair{"owner.phone", cast.String("555")},
	)

	cases := []struct {
		path string
		want []any
	}{
		{"items[*].name", []any{"a", "c"}},
		{"items[2].name", []any{"c"}},
		{"items[1].name", nil},
		{"owner[*]", []any{"ann@example.com", "555"}},
		{"owner.missing", nil},
		{"items[]", nil},
	}

	for _, tc := range cases {
		var got []any
		for _, n := range tree.Lookup(root, fieldpath.Parse(tc.path)) {
			got = append(got, n.Interface())
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Lookup(%q) mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestGet(t *testing.T) {
	root := build(t, tree.NewBuilder(), pair{"a.b", cast.Int(7)})

	n, ok := tree.Get(root, fieldpath.Parse("a.b"))
	if !ok {
		t.Fatalf("expected a.b to resolve")
	}
	if got := n.Interface(); got != int64(7) {
		t.Fatalf("a.b = %v, want 7", got)
	}
	if _, ok := tree.Get(root, fieldpath.Parse("a.c")); ok {
		t.Fatalf("a.c must not resolve")
	}
}
