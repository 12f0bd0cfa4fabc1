package fuzzy

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"acme", "", 4},
		{"acme", "acme", 0},
		{"acme", "acmee", 1},
		{"globex", "globx", 1},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		if got := LevenshteinDistance(tc.s1, tc.s2); got != tc.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tc.s1, tc.s2, got, tc.want)
		}
	}
}

func TestMatch(t *testing.T) {
	if !Match("acme", "Application at Acme Corp", 1) {
		t.Error("expected substring match")
	}
	if !Match("acmee", "acme corp", 1) {
		t.Error("expected typo within threshold to match")
	}
	if Match("xyzzy", "acme corp", 1) {
		t.Error("unrelated query must not match")
	}
	if !Match("glo", "globex", 1) {
		t.Error("expected prefix match")
	}
}

func TestMatchRecord(t *testing.T) {
	company := "initech"
	subject := "Interview invite for backend role"
	sender := "recruiting@initech.io"

	if !MatchRecord("initech", company, subject, sender) {
		t.Error("expected company match")
	}
	if !MatchRecord("interview", company, subject, sender) {
		t.Error("expected subject match")
	}
	if !MatchRecord("recruiting", company, subject, sender) {
		t.Error("expected sender match")
	}
	if !MatchRecord("intrview", company, subject, sender) {
		t.Error("expected typo-tolerant match")
	}
	if MatchRecord("hooli", company, subject, sender) {
		t.Error("unrelated query must not match")
	}
}
