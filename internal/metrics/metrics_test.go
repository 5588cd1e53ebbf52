package metrics

import "testing"

func TestModeValue(t *testing.T) {
	cases := map[string]float64{
		"idle":     0,
		"starting": 1,
		"live":     2,
		"bogus":    -1,
	}
	for mode, want := range cases {
		if got := ModeValue(mode); got != want {
			t.Errorf("ModeValue(%q) = %v, want %v", mode, got, want)
		}
	}
}
