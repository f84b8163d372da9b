package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 10, 10},
		{"   ", 10, 10},
		{"abc", 1, 1},
		{"2.5", 1, 1},
		{"0", 1, 1},
		{"-4", 10, 10},
		{"42", 1, 42},
		{" 7 ", 1, 7},
		{"99999999999999999999999", 3, 3},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
