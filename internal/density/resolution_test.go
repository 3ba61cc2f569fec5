package density

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectResolutionTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		n    int
		base int
		want int
	}{
		{"tiny set doubles base", 50, 100, 100},
		{"tiny set capped at 100", 50, 80, 100},
		{"tiny set small base", 50, 30, 60},
		{"small set capped at 80", 100, 100, 80},
		{"small set scales 1.5", 200, 50, 75},
		{"mid set uses base", 500, 100, 100},
		{"mid set upper edge", 1999, 100, 100},
		{"large set scales 0.8", 2000, 100, 80},
		{"large set floored at 30", 5000, 30, 30},
		{"larger set scales 0.6", 10000, 100, 60},
		{"larger set floored at 25", 20000, 40, 25},
		{"huge set scales 0.4", 50000, 100, 40},
		{"huge set floored at 20", 200000, 40, 20},
		{"zero base falls back to default", 500, 0, DefaultBaseResolution},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SelectResolution(tc.n, tc.base))
		})
	}
}

func TestSelectResolutionMonotonicNonIncreasing(t *testing.T) {
	t.Parallel()

	// Walk every tier boundary and its neighbours; the resolution must never
	// grow as n grows. This only holds while no tier cap bites: the 80-cap on
	// the 100..499 tier sits below base itself once base > 80/1.5, so the
	// sweep stays under that.
	ns := []int{1, 99, 100, 101, 499, 500, 501, 1999, 2000, 2001,
		9999, 10000, 10001, 49999, 50000, 50001, 1000000}
	for _, base := range []int{40, 50} {
		prev := SelectResolution(ns[0], base)
		for _, n := range ns[1:] {
			cur := SelectResolution(n, base)
			assert.LessOrEqual(t, cur, prev, "base=%d n=%d", base, n)
			prev = cur
		}
	}
}

func TestSelectResolutionRange(t *testing.T) {
	t.Parallel()

	ns := []int{1, 99, 100, 101, 499, 500, 501, 1999, 2000, 2001,
		9999, 10000, 10001, 49999, 50000, 50001, 1000000}
	for _, base := range []int{40, 50, 100} {
		for _, n := range ns {
			cur := SelectResolution(n, base)
			assert.GreaterOrEqual(t, cur, 20, "base=%d n=%d", base, n)
			assert.LessOrEqual(t, cur, 2*base, "base=%d n=%d", base, n)
		}
	}
}

func TestSelectResolutionCapOverridesBase(t *testing.T) {
	t.Parallel()

	// With a large base the 100..499 tier caps at 80 while the 500..1999 tier
	// returns base unchanged, so resolution steps back up across n=500. That
	// is the table's intent, not an ordering bug.
	assert.Equal(t, 80, SelectResolution(499, 100))
	assert.Equal(t, 100, SelectResolution(500, 100))
}

func TestSampleFractionTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n    int
		want float64
	}{
		{10, 1.0},
		{999, 1.0},
		{1000, 0.8},
		{4999, 0.8},
		{5000, 0.5},
		{19999, 0.5},
		{20000, 0.3},
		{49999, 0.3},
		{50000, 0.2},
		{99999, 0.2},
		{100000, 0.1},
		{5000000, 0.1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SampleFraction(tc.n), "n=%d", tc.n)
	}
}
