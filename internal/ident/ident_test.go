package ident

import "testing"

func TestSafe(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"_works", true},
		{"composed-by", true},
		{"a1_b2-c3", true},
		{"x", true},
		{"", false},
		{"Works", false},
		{"my works", false},
		{"works.yaml", false},
		{"naïve", false},
		{`drop"table`, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Safe(tt.in); got != tt.want {
				t.Fatalf("Safe(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"_works", `"_works"`},
		{"", `""`},
		{`a"b`, `"a""b"`},
		{`""`, `""""""`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Quote(tt.in); got != tt.want {
				t.Fatalf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Works", "my-works"},
		{"works.yaml", "works-yaml"},
		{"!!!", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Suggest(tt.in)
			if got != tt.want {
				t.Fatalf("Suggest(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !Safe(got) {
				t.Fatalf("Suggest(%q) = %q is not itself safe", tt.in, got)
			}
		})
	}
}
