// Package service implements the business rules of the journal: the entry
// lifecycle, streaks, analytics, PIN locking, tags, and export rendering.
package service

import (
	"sort"
	"time"

	"dainiki/internal/models"
)

// Streaks holds the two streak figures computed over a user's entry dates.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ComputeStreaks calculates the current and longest consecutive-day runs
// over the given entry dates. The input needs no ordering and may contain
// duplicates or times with a time-of-day component; everything is reduced
// to distinct calendar days first. The current streak is anchored at today
// or, failing that, yesterday, and counts backward; a day without an entry
// breaks it. The longest streak is the best contiguous run anywhere in
// history.
func ComputeStreaks(dates []time.Time, today time.Time) Streaks {
	if len(dates) == 0 {
		return Streaks{}
	}

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := models.DayOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	var s Streaks

	anchor := models.DayOf(today)
	if _, ok := seen[anchor]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := seen[anchor]; !ok {
			anchor = time.Time{}
		}
	}
	if !anchor.IsZero() {
		s.Current = 1
		for check := anchor.AddDate(0, 0, -1); ; check = check.AddDate(0, 0, -1) {
			if _, ok := seen[check]; !ok {
				break
			}
			s.Current++
		}
	}

	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
			continue
		}
		if run > s.Longest {
			s.Longest = run
		}
		run = 1
	}
	// The final run is never followed by a gap, flush it explicitly.
	if run > s.Longest {
		s.Longest = run
	}

	return s
}
