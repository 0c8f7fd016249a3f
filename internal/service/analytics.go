package service

import (
	"context"
	"time"

	"dainiki/internal/cache"
	"dainiki/internal/observability"
	"dainiki/internal/repository"
)

// WordCountPoint is one point of the word-count trend, keyed by entry date.
type WordCountPoint struct {
	Date      time.Time `json:"date"`
	WordCount int       `json:"word_count"`
}

// AnalyticsSummary aggregates a user's whole journal. An empty journal
// produces zero counts and empty collections, never an error.
type AnalyticsSummary struct {
	TotalEntries     int              `json:"total_entries"`
	CurrentStreak    int              `json:"current_streak"`
	LongestStreak    int              `json:"longest_streak"`
	MoodDistribution map[string]int   `json:"mood_distribution"`
	MostFrequentMood string           `json:"most_frequent_mood"`
	TagUsage         map[string]int   `json:"tag_usage"`
	MostUsedTag      string           `json:"most_used_tag"`
	WordCountTrend   []WordCountPoint `json:"word_count_trend"`
	AverageWordCount float64          `json:"average_word_count"`
}

// AnalyticsService builds journal summaries from a user's full entry set.
type AnalyticsService struct {
	entryRepo repository.EntryRepository
	// now is the clock; swapped in tests.
	now func() time.Time
}

// NewAnalyticsService returns a new AnalyticsService.
func NewAnalyticsService(entryRepo repository.EntryRepository) *AnalyticsService {
	return &AnalyticsService{entryRepo: entryRepo, now: time.Now}
}

// Summary computes the user's analytics, cache-aside through Redis.
func (s *AnalyticsService) Summary(ctx context.Context, userID uint) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	err := cache.Aside(ctx, cache.AnalyticsKey(userID), &summary, cache.AnalyticsTTL, func() error {
		computed, err := s.build(ctx, userID)
		if err != nil {
			return err
		}
		summary = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *AnalyticsService) build(ctx context.Context, userID uint) (*AnalyticsSummary, error) {
	start := time.Now()
	defer func() {
		observability.AnalyticsComputeDuration.Observe(time.Since(start).Seconds())
	}()

	entries, err := s.entryRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		MoodDistribution: map[string]int{},
		TagUsage:         map[string]int{},
		WordCountTrend:   []WordCountPoint{},
	}
	if len(entries) == 0 {
		return summary, nil
	}

	summary.TotalEntries = len(entries)

	dates := make([]time.Time, 0, len(entries))
	totalWords := 0

	// entries arrive date DESC; walk backward for the ascending trend.
	for i := len(entries) - 1; i >= 0; i-- {
		e := &entries[i]
		dates = append(dates, e.Date)

		summary.MoodDistribution[e.PrimaryMood.String()]++
		for _, tag := range e.Tags {
			summary.TagUsage[tag.Name]++
		}

		wc := e.WordCount()
		totalWords += wc
		summary.WordCountTrend = append(summary.WordCountTrend, WordCountPoint{
			Date:      e.Date,
			WordCount: wc,
		})
	}

	summary.MostFrequentMood = topKey(summary.MoodDistribution)
	summary.MostUsedTag = topKey(summary.TagUsage)
	summary.AverageWordCount = float64(totalWords) / float64(len(entries))

	streaks := ComputeStreaks(dates, s.now())
	summary.CurrentStreak = streaks.Current
	summary.LongestStreak = streaks.Longest

	return summary, nil
}

// topKey picks the key with the highest count, breaking ties alphabetically
// so results are deterministic across runs.
func topKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || key < best)) {
			best = key
			bestCount = count
		}
	}
	return best
}
