package cast_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpath/pkg/cast"
)

func TestCast(t *testing.T) {
	cases := []struct {
		raw  string
		hint cast.Hint
		want any
	}{
		{"15.01", cast.HintFloat, 15.01},
		{"15.01", cast.HintInt, "15.01"},
		{"42", cast.HintInt, int64(42)},
		{"-7", cast.HintInt, int64(-7)},
		{"01", cast.HintInt, "01"},
		{"1.0", cast.HintInt, "1.0"},
		{"+5", cast.HintInt, "+5"},
		{"99999999999999999999", cast.HintInt, "99999999999999999999"},
		{"", cast.HintInt, nil},
		{"100", cast.HintFloat, float64(100)},
		{"1.0", cast.HintFloat, "1.0"},
		{"1e-7", cast.HintFloat, 1e-7},
		{"1e+21", cast.HintFloat, 1e21},
		{"0.000001", cast.HintFloat, 0.000001},
		{"Infinity", cast.HintFloat, "Infinity"},
		{"NaN", cast.HintFloat, "NaN"},
		{"abc", cast.HintFloat, "abc"},
		{"0", cast.HintBool, false},
		{"", cast.HintBool, false},
		{"anything", cast.HintBool, true},
		{"false", cast.HintBool, true},
		{"", cast.HintNone, nil},
		{"plain", cast.HintNone, "plain"},
		{"42", cast.HintNone, "42"},
		{"a\nb", cast.HintNone, "a\r\nb"},
		{"a\r\nb\nc", cast.HintNone, "a\r\nb\r\nc"},
		{"\n", cast.HintNone, "\r\n"},
	}

	for _, tc := range cases {
		got := cast.Cast(tc.raw, tc.hint).Interface()
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Cast(%q, %s) mismatch (-want +got):\n%s", tc.raw, tc.hint, diff)
		}
	}
}

func TestCastKinds(t *testing.T) {
	if k := cast.Cast("", cast.HintNone).Kind(); k != cast.KindNull {
		t.Fatalf("empty string kind = %s, want null", k)
	}
	if k := cast.Cast("1", cast.HintFloat).Kind(); k != cast.KindFloat {
		t.Fatalf("float hint kind = %s, want float", k)
	}
	if k := cast.Cast("x", cast.HintInt).Kind(); k != cast.KindString {
		t.Fatalf("fallback kind = %s, want string", k)
	}
}

func TestParseHint(t *testing.T) {
	cases := map[string]cast.Hint{
		"int":     cast.HintInt,
		" INT ":   cast.HintInt,
		"integer": cast.HintInt,
		"float":   cast.HintFloat,
		"number":  cast.HintFloat,
		"bool":    cast.HintBool,
		"Boolean": cast.HintBool,
		"":        cast.HintNone,
		"date":    cast.HintNone,
	}
	for raw, want := range cases {
		if got := cast.ParseHint(raw); got != want {
			t.Errorf("ParseHint(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:           "0",
		15.01:       "15.01",
		-2.5:        "-2.5",
		100:         "100",
		1e-7:        "1e-7",
		1.5e-10:     "1.5e-10",
		1e21:        "1e+21",
		123456789.5: "123456789.5",
	}
	for in, want := range cases {
		if got := cast.FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestValueJSON(t *testing.T) {
	cases := []struct {
		value cast.Value
		want  string
	}{
		{cast.Null(), "null"},
		{cast.Int(30), "30"},
		{cast.Float(15.01), "15.01"},
		{cast.Bool(true), "true"},
		{cast.String("say \"hi\""), `"say \"hi\""`},
	}
	for _, tc := range cases {
		raw, err := tc.value.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.value.Interface(), err)
		}
		if string(raw) != tc.want {
			t.Errorf("MarshalJSON(%v) = %s, want %s", tc.value.Interface(), raw, tc.want)
		}
	}

	if _, err := cast.Float(math.Inf(1)).MarshalJSON(); err == nil {
		t.Fatalf("expected an error for infinite floats")
	}
}

func TestValueText(t *testing.T) {
	for _, raw := range []string{"42", "15.01", "text"} {
		hint := cast.HintNone
		switch raw {
		case "42":
			hint = cast.HintInt
		case "15.01":
			hint = cast.HintFloat
		}
		if got := cast.Cast(raw, hint).Text(); got != raw {
			t.Errorf("Text() of %q = %q", raw, got)
		}
	}
	if got := cast.Null().Text(); got != "" {
		t.Errorf("null text = %q", got)
	}
}

func TestHintText(t *testing.T) {
	var h cast.Hint
	if err := h.UnmarshalText([]byte("float")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h != cast.HintFloat {
		t.Fatalf("hint = %v, want float", h)
	}
	text, _ := h.MarshalText()
	if string(text) != "float" {
		t.Fatalf("marshal text = %q", text)
	}
}
