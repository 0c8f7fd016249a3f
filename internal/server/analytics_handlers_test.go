package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummaryOverHTTP(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "reflective", "")

	createEntry(t, app, token, "2026-03-01", fiber.Map{"content": "good day outside", "primary_mood": 4})
	createEntry(t, app, token, "2026-03-02", fiber.Map{"content": "rough one", "primary_mood": 2})
	createEntry(t, app, token, "2026-03-03", fiber.Map{"content": "fine", "primary_mood": 4})

	resp := doJSON(t, app, fiber.MethodGet, "/api/analytics/summary", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decodeBody(t, resp)

	assert.Equal(t, float64(3), summary["total_entries"])
	assert.Equal(t, "Happy", summary["most_frequent_mood"])

	moods := summary["mood_distribution"].(map[string]any)
	assert.Equal(t, float64(2), moods["Happy"])
	assert.Equal(t, float64(1), moods["Sad"])

	trend := summary["word_count_trend"].([]any)
	require.Len(t, trend, 3)
	oldest := trend[0].(map[string]any)
	assert.Contains(t, oldest["date"], "2026-03-01")
	assert.Equal(t, float64(3), oldest["word_count"])
}

func TestAnalyticsSummaryEmptyOverHTTP(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := registerUser(t, app, "newcomer", "")

	resp := doJSON(t, app, fiber.MethodGet, "/api/analytics/summary", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decodeBody(t, resp)
	assert.Equal(t, float64(0), summary["total_entries"])
	assert.Equal(t, "", summary["most_frequent_mood"])
}
