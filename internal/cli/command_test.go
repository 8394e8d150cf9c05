package cli

import "testing"

func TestPluralItems(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "Mounted 0 items"},
		{1, "Mounted 1 item"},
		{2, "Mounted 2 items"},
		{42, "Mounted 42 items"},
	}

	for _, tt := range tests {
		if got := pluralItems(tt.n); got != tt.want {
			t.Errorf("pluralItems(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
