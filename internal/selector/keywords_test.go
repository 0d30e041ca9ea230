// ABOUTME: Tests for keyword extraction and Jaccard similarity
// ABOUTME: Verifies stop-word filtering, casing, and set overlap math
package selector

import "testing"

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "strips stop words and lowercases",
			in:   "What's the Weather in Philadelphia?",
			want: []string{"weather", "philadelphia"},
		},
		{
			name: "splits on punctuation",
			in:   "prefer-dark_mode, always",
			want: []string{"prefer", "dark", "mode", "always"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "only stop words",
			in:   "the and of",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywords(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("keyword count = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for _, w := range tt.want {
				if _, ok := got[w]; !ok {
					t.Errorf("missing keyword %q", w)
				}
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	set := func(words ...string) map[string]struct{} {
		m := make(map[string]struct{})
		for _, w := range words {
			m[w] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name string
		a, b map[string]struct{}
		want float64
	}{
		{"identical", set("a", "b"), set("a", "b"), 1.0},
		{"disjoint", set("a"), set("b"), 0.0},
		{"half overlap", set("a", "b"), set("b", "c"), 1.0 / 3.0},
		{"empty a", set(), set("a"), 0.0},
		{"both empty", set(), set(), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("jaccard = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAffinityBonus(t *testing.T) {
	goalWords := keywords("What's the weather in Philadelphia?")

	if got := affinityBonus(goalWords, "location"); got != 0.3 {
		t.Errorf("weather goal vs location = %v, want 0.3", got)
	}
	if got := affinityBonus(goalWords, "preference"); got != 0 {
		t.Errorf("weather goal vs preference = %v, want 0", got)
	}

	codeWords := keywords("help me debug this function")
	if got := affinityBonus(codeWords, "preference"); got != 0.3 {
		t.Errorf("code goal vs preference = %v, want 0.3", got)
	}
}
