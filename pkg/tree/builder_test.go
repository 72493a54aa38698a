package tree_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpath/pkg/cast"
	"github.com/goliatone/go-formpath/pkg/fieldpath"
	"github.com/goliatone/go-formpath/pkg/tree"
)

type pair struct {
	name  string
	value cast.Value
}

func build(t *testing.T, b *tree.Builder, pairs ...pair) *tree.Map {
	t.Helper()
	for _, p := range pairs {
		if err := b.Insert(fieldpath.Parse(p.name), p.value); err != nil {
			t.Fatalf("insert %q: %v", p.name, err)
		}
	}
	return b.Root()
}

func mustJSON(t *testing.T, n tree.Node) string {
	t.Helper()
	raw, err := n.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestInsertNestedKeysKeepFirstSeenOrder(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"user.name", cast.String("Ann")},
		pair{"user.age", cast.Int(30)},
	)

	if got, want := mustJSON(t, root), `{"user":{"name":"Ann","age":30}}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}

	user, ok := root.Get("user")
	if !ok {
		t.Fatalf("user key missing")
	}
	if diff := cmp.Diff([]string{"name", "age"}, user.(*tree.Map).Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertOrderIsNotAlphabetical(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"zeta", cast.Int(1)},
		pair{"alpha", cast.Int(2)},
		pair{"mid.b", cast.Int(3)},
		pair{"mid.a", cast.Int(4)},
		pair{"zeta", cast.Int(5)},
	)
	if got, want := mustJSON(t, root), `{"zeta":5,"alpha":2,"mid":{"b":3,"a":4}}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertAppendMarkers(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"items[]", cast.String("a")},
		pair{"items[]", cast.String("b")},
	)
	if got, want := mustJSON(t, root), `{"items":["a","b"]}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertMidPathAppendCreatesNewElements(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"rows[].name", cast.String("a")},
		pair{"rows[].qty", cast.Int(1)},
	)
	if got, want := mustJSON(t, root), `{"rows":[{"name":"a"},{"qty":1}]}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertAppendGroupMode(t *testing.T) {
	root := build(t, tree.NewBuilder(tree.WithAppendMode(tree.AppendGroup)),
		pair{"rows[].name", cast.String("a")},
		pair{"rows[].qty", cast.Int(1)},
		pair{"rows[].name", cast.String("b")},
		pair{"rows[].qty", cast.Int(2)},
		pair{"tags[]", cast.String("x")},
		pair{"tags[]", cast.String("y")},
	)
	want := `{"rows":[{"name":"a","qty":1},{"name":"b","qty":2}],"tags":["x","y"]}`
	if got := mustJSON(t, root); got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertIndexExtendsWithNulls(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"grid[2]", cast.Int(3)},
		pair{"grid[0]", cast.Int(1)},
		pair{"grid[]", cast.Int(4)},
	)
	if got, want := mustJSON(t, root), `{"grid":[1,null,3,4]}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertIndexedObjects(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"user.addresses[0].street", cast.String("Main")},
		pair{"user.addresses[0].zip", cast.Int(12345)},
		pair{"user.addresses[1].street", cast.String("Side")},
		pair{"matrix[0][1]", cast.Bool(true)},
	)
	want := `{"user":{"addresses":[{"street":"Main","zip":12345},{"street":"Side"}]},"matrix":[[null,true]]}`
	if got := mustJSON(t, root); got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertWildcardBuildsLiteralKey(t *testing.T) {
	root := build(t, tree.NewBuilder(), pair{"user[name]", cast.String("Ann")})
	if got, want := mustJSON(t, root), `{"user":{"name":"Ann"}}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
}

func TestInsertConflicts(t *testing.T) {
	cases := []struct {
		name   string
		seed   []pair
		insert string
	}{
		{"map addressed as list", []pair{{"a.b", cast.Int(1)}}, "a[0]"},
		{"list addressed as map", []pair{{"a[0]", cast.Int(1)}}, "a.b"},
		{"scalar addressed as map", []pair{{"a", cast.Int(1)}}, "a.b"},
		{"map overwritten by scalar", []pair{{"a.b", cast.Int(1)}}, "a"},
		{"list overwritten by scalar", []pair{{"a[]", cast.Int(1)}}, "a"},
		{"indexed container overwritten", []pair{{"a[0].b", cast.Int(1)}}, "a[0]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tree.NewBuilder()
			root := build(t, b, tc.seed...)
			before := mustJSON(t, root)

			err := b.Insert(fieldpath.Parse(tc.insert), cast.String("x"))
			if !errors.Is(err, tree.ErrInconsistentPathKind) {
				t.Fatalf("expected ErrInconsistentPathKind, got %v", err)
			}
			if after := mustJSON(t, root); after != before {
				t.Fatalf("tree changed after failed insert: %s -> %s", before, after)
			}
		})
	}
}

func TestInsertRejectsLeadingSequence(t *testing.T) {
	err := tree.Insert(tree.NewMap(), fieldpath.Path{fieldpath.Index(0)}, cast.Int(1))
	if !errors.Is(err, tree.ErrInconsistentPathKind) {
		t.Fatalf("expected ErrInconsistentPathKind, got %v", err)
	}
	if err := tree.Insert(tree.NewMap(), nil, cast.Int(1)); !errors.Is(err, tree.ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestInsertNilRoot(t *testing.T) {
	err := tree.Insert(nil, fieldpath.Parse("a"), cast.String("x"))
	if !errors.Is(err, tree.ErrNilRoot) {
		t.Fatalf("expected ErrNilRoot, got %v", err)
	}
}

func TestInsertMaxIndex(t *testing.T) {
	b := tree.NewBuilder(tree.WithMaxIndex(3))
	err := b.Insert(fieldpath.Parse("a.b[4]"), cast.Int(1))
	if !errors.Is(err, tree.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if b.Root().Len() != 0 {
		t.Fatalf("failed insert must not create containers, got %s", mustJSON(t, b.Root()))
	}

	for i := 0; i < 4; i++ {
		if err := b.Insert(fieldpath.Parse("c[]"), cast.Int(int64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := b.Insert(fieldpath.Parse("c[]"), cast.Int(4)); !errors.Is(err, tree.ErrIndexOutOfRange) {
		t.Fatalf("expected append past max to fail, got %v", err)
	}
}

func TestInterface(t *testing.T) {
	root := build(t, tree.NewBuilder(),
		pair{"a.b[]", cast.Int(1)},
		pair{"a.c", cast.Null()},
		pair{"d", cast.Float(1.5)},
	)
	want := map[string]any{
		"a": map[string]any{
			"b": []any{int64(1)},
			"c": nil,
		},
		"d": 1.5,
	}
	if diff := cmp.Diff(want, root.Interface()); diff != "" {
		t.Fatalf("interface mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAppendMode(t *testing.T) {
	cases := map[string]tree.AppendMode{
		"Group":   tree.AppendGroup,
		" group ": tree.AppendGroup,
		"always":  tree.AppendAlways,
		"PUSH":    tree.AppendAlways,
		"":        tree.AppendAlways,
		"other":   tree.AppendAlways,
	}
	for raw, want := range cases {
		if got := tree.ParseAppendMode(raw); got != want {
			t.Errorf("ParseAppendMode(%q) = %v, want %v", raw, got, want)
		}
	}
}
