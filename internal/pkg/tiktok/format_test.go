package tiktok

import "testing"

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 7, want: "7"},
		{in: 999, want: "999"},
		{in: 1000, want: "1.0K"},
		{in: 1500, want: "1.5K"},
		{in: 999999, want: "1000.0K"},
		{in: 1000000, want: "1.0M"},
		{in: 1500000, want: "1.5M"},
		{in: 2700000, want: "2.7M"},
		{in: 123456789, want: "123.5M"},
	}

	for _, tt := range tests {
		if got := FormatCount(tt.in); got != tt.want {
			t.Fatalf("FormatCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
