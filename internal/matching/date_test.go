package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDateScore_Tiers(t *testing.T) {
	cases := []struct {
		delta int
		want  int
	}{
		{0, 15}, {3, 15},
		{4, 10}, {7, 10},
		{8, 5}, {15, 5},
		{16, 0}, {30, 0},
		{31, -10}, {60, -10},
	}
	base := day("2024-01-15")
	for _, c := range cases {
		other := base.AddDate(0, 0, c.delta)
		assert.Equal(t, c.want, DateScore(base, other), "delta=%d", c.delta)
		other = base.AddDate(0, 0, -c.delta)
		assert.Equal(t, c.want, DateScore(base, other), "delta=-%d", c.delta)
	}
}

func TestDateScore_Monotone(t *testing.T) {
	base := day("2024-01-15")
	prev := DateScore(base, base)
	for delta := 1; delta <= 60; delta++ {
		got := DateScore(base, base.AddDate(0, 0, delta))
		assert.LessOrEqual(t, got, prev, "date score must be monotone non-increasing as delta grows")
		prev = got
	}
}
