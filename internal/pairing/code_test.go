package pairing

import (
	"strings"
	"testing"
)

func TestGenerateFormat(t *testing.T) {
	t.Parallel()
	for i := 0; i < 200; i++ {
		code := Generate()
		if len(code) != CodeLength {
			t.Fatalf("Generate: got length %d, want %d (%q)", len(code), CodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("Generate: %q contains %q, not in alphabet", code, r)
			}
		}
		if !IsValidFormat(code) {
			t.Fatalf("Generate: %q fails IsValidFormat", code)
		}
	}
}

func TestAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	t.Parallel()
	if len(Alphabet) != 32 {
		t.Fatalf("alphabet size: got %d, want 32", len(Alphabet))
	}
	for _, r := range "0O1I" {
		if strings.ContainsRune(Alphabet, r) {
			t.Errorf("alphabet contains ambiguous glyph %q", r)
		}
	}
}

func TestIsValidFormat(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code string
		want bool
	}{
		{"A7K3M9", true},
		{"ZZZZZZ", true},
		{"a7k3m9", false}, // lowercase: normalize first
		{"A7K3M", false},  // too short
		{"A7K3M99", false},
		{"A7K3M0", false}, // 0 excluded
		{"A7K3MO", false}, // O excluded
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidFormat(tc.code); got != tc.want {
			t.Errorf("IsValidFormat(%q): got %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"  a7k3m9\n", "A7K3M9"},
		{"a7k3m0", "A7K3MQ"}, // 0 -> Q
		{"A7K3MO", "A7K3MQ"}, // O -> Q
		{"a7k3m1", "A7K3ML"}, // 1 -> L
		{"A7K3MI", "A7K3ML"}, // I -> L
		{"A7K3M9", "A7K3M9"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{"A7K3M9", " a7k3m0 ", "o1ilOI", Generate()}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
