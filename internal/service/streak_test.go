package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(s)
	}
	return out
}

func TestComputeStreaks(t *testing.T) {
	t.Parallel()

	today := day("2026-03-10")

	tests := []struct {
		name    string
		dates   []time.Time
		current int
		longest int
	}{
		{
			name:    "empty history",
			dates:   nil,
			current: 0,
			longest: 0,
		},
		{
			name:    "single entry today",
			dates:   days("2026-03-10"),
			current: 1,
			longest: 1,
		},
		{
			name:    "single entry yesterday still counts",
			dates:   days("2026-03-09"),
			current: 1,
			longest: 1,
		},
		{
			name:    "entry two days ago breaks current",
			dates:   days("2026-03-08"),
			current: 0,
			longest: 1,
		},
		{
			name:    "run ending today",
			dates:   days("2026-03-08", "2026-03-09", "2026-03-10"),
			current: 3,
			longest: 3,
		},
		{
			name:    "run ending yesterday",
			dates:   days("2026-03-07", "2026-03-08", "2026-03-09"),
			current: 3,
			longest: 3,
		},
		{
			name:    "gap in the middle",
			dates:   days("2026-03-01", "2026-03-02", "2026-03-03", "2026-03-09", "2026-03-10"),
			current: 2,
			longest: 3,
		},
		{
			name:    "longest run is historical",
			dates:   days("2026-02-01", "2026-02-02", "2026-02-03", "2026-02-04", "2026-03-10"),
			current: 1,
			longest: 4,
		},
		{
			name: "two equal runs, final run flushed",
			dates: days(
				"2026-03-01", "2026-03-02", "2026-03-03",
				"2026-03-08", "2026-03-09", "2026-03-10",
			),
			current: 3,
			longest: 3,
		},
		{
			name:    "unordered input with duplicates",
			dates:   days("2026-03-10", "2026-03-08", "2026-03-09", "2026-03-09", "2026-03-08"),
			current: 3,
			longest: 3,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeStreaks(tc.dates, today)
			assert.Equal(t, tc.current, got.Current, "current streak")
			assert.Equal(t, tc.longest, got.Longest, "longest streak")
		})
	}
}

func TestComputeStreaksNormalizesTimeOfDay(t *testing.T) {
	t.Parallel()

	dates := []time.Time{
		time.Date(2026, 3, 9, 23, 45, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 6, 5, 0, 0, time.UTC),
	}
	today := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	got := ComputeStreaks(dates, today)
	assert.Equal(t, 2, got.Current)
	assert.Equal(t, 2, got.Longest)
}
