package server

import "testing"

func TestDefaultPlayerName(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"abcd1234", "Player abcd"},
		{"abcd", "Player abcd"},
		{"ab", "Player ab"},
		{"x", "Player x"},
		{"", "Player "},
	}
	for _, c := range cases {
		if got := defaultPlayerName(c.key); got != c.want {
			t.Errorf("defaultPlayerName(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}
