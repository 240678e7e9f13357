package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
		// "é" is two bytes; cutting inside it drops the whole rune
		{"café", 4, "caf"},
		// "界" is three bytes
		{"ab世界", 4, "ab"},
		{"ab世界", 5, "ab世"},
	}
	for _, c := range cases {
		got := Truncate(c.in, c.n)
		if got != c.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestTruncate_LongUserAgent(t *testing.T) {
	ua := strings.Repeat("a", 254) + "éé"
	got := Truncate(ua, 255)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncate produced invalid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != 254 {
		t.Errorf("len = %d, want 254", len(got))
	}
}
