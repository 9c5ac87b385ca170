package handlers

import (
	"cerebmod/internal/models"
	"cerebmod/internal/utils"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID(t *testing.T) {
	var req struct {
		ID flexID `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id": 12}`), &req))
	assert.EqualValues(t, 12, req.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "34"}`), &req))
	assert.EqualValues(t, 34, req.ID)

	req.ID = 7
	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &req))
	assert.EqualValues(t, 0, req.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": "abc"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"id": -1}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &req))
}

func TestLatestPerMetric(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.SubredditInsight{
		{Metric: "spam", Value: 4, RecordedAt: t0.Add(2 * time.Hour)},
		{Metric: "flagged_users", Value: 9, RecordedAt: t0.Add(time.Hour)},
		{Metric: "spam", Value: 1, RecordedAt: t0},
	}

	got := latestPerMetric(rows)
	require.Len(t, got, 2)
	assert.Equal(t, MetricValue{Metric: "spam", Value: 4, RecordedAt: t0.Add(2 * time.Hour)}, got[0])
	assert.Equal(t, "flagged_users", got[1].Metric)

	assert.NotNil(t, latestPerMetric(nil))
}

func TestSummaryNotCachedAfterConcurrentStore(t *testing.T) {
	cache, err := utils.NewCache(8)
	require.NoError(t, err)
	h := NewInsightHandler(nil, cache)
	key := summaryKey("golang")

	gen := h.generation.Load()
	h.invalidate(key)
	h.cacheSummary(key, gen, &InsightSummary{Subreddit: "golang"})
	assert.Nil(t, cache.Get(key), "summary read before the store must not be cached")

	gen = h.generation.Load()
	fresh := &InsightSummary{Subreddit: "golang"}
	h.cacheSummary(key, gen, fresh)
	assert.Same(t, fresh, cache.Get(key))
}
