package corridor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateBinBoundaries(t *testing.T) {
	cases := []struct {
		pos  float64
		want string
	}{
		{0, Nadiad},
		{200, Nadiad},
		{200.5, Kanjari},
		{400, Kanjari},
		{401, Uttarsanda},
		{600, Uttarsanda},
		{750, Ode},
		{800, Ode},
		{800.5, Anand},
		{900, Anand},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Locate(tc.pos), "position %.1f", tc.pos)
	}
}

func TestLocateIsMonotonic(t *testing.T) {
	order := map[string]int{}
	for i, s := range Stations {
		order[s.Name] = i
	}
	prev := 0
	for p := 0.0; p <= MaxPosition; p += 2.5 {
		idx := order[Locate(p)]
		if idx < prev {
			t.Fatalf("station index went backwards at %.1f", p)
		}
		prev = idx
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-15))
	assert.Equal(t, 900.0, Clamp(910))
	assert.Equal(t, 455.0, Clamp(455))
}
