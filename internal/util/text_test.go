package util

import "testing"

func TestNormalizeSpaces(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "  a   b\tc\n d ", want: "a b c d"},
		{input: "", want: ""},
		{input: "single", want: "single"},
	}
	for _, tc := range cases {
		if got := NormalizeSpaces(tc.input); got != tc.want {
			t.Fatalf("NormalizeSpaces(%q)=%q want %q", tc.input, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := []struct {
		input float64
		want  string
	}{
		{input: 96479756.48, want: "96479756.48"},
		{input: 100, want: "100"},
		{input: 0, want: "0"},
	}
	for _, tc := range cases {
		if got := FormatFloat(tc.input); got != tc.want {
			t.Fatalf("FormatFloat(%v)=%q want %q", tc.input, got, tc.want)
		}
	}
}
