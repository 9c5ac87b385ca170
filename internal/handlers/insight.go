package handlers

import (
	"cerebmod/internal/db"
	"cerebmod/internal/models"
	"cerebmod/internal/utils"
	"net/http"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const summaryTTL = 30 * time.Second

type InsightHandler struct {
	db    *db.Provider
	cache *utils.Cache
	// generation is bumped on every Store; a summary computed under an
	// older generation is served but not cached.
	generation atomic.Uint64
}

func NewInsightHandler(p *db.Provider, cache *utils.Cache) *InsightHandler {
	return &InsightHandler{db: p, cache: cache}
}

type storeInsightRequest struct {
	SubredditName string   `json:"subredditName"`
	Metric        string   `json:"metric"`
	Value         *float64 `json:"value"`
}

// MetricValue is the latest sample of one metric.
type MetricValue struct {
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

type InsightSummary struct {
	Subreddit string        `json:"subreddit"`
	Metrics   []MetricValue `json:"metrics"`
}

func summaryKey(subreddit string) string {
	return "insight:" + subreddit
}

// Store records one metric sample. Insights do not reference posts or cases.
func (h *InsightHandler) Store(c *gin.Context) {
	var req storeInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.SubredditName == "" || req.Metric == "" || req.Value == nil {
		BadRequest(c, "Missing subredditName, metric or value")
		return
	}
	if utf8.RuneCountInString(req.SubredditName) > 100 || utf8.RuneCountInString(req.Metric) > 50 {
		BadRequest(c, "subredditName or metric too long")
		return
	}

	in := models.SubredditInsight{SubredditName: req.SubredditName, Metric: req.Metric, Value: *req.Value}
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		return tx.Create(&in).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	h.invalidate(summaryKey(in.SubredditName))
	c.JSON(http.StatusCreated, gin.H{"insightId": in.ID})
}

// List returns raw samples, newest first.
func (h *InsightHandler) List(c *gin.Context) {
	limit := utils.ClampLimit(c.Query("limit"), defaultPageSize, maxPageSize)
	subreddit := c.Query("subreddit")

	var insights []models.SubredditInsight
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		q := tx.Order("recorded_at DESC").Order("id DESC").Limit(limit)
		if subreddit != "" {
			q = q.Where("subreddit_name = ?", subreddit)
		}
		return q.Find(&insights).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// Summary returns the latest value of every metric of a subreddit.
func (h *InsightHandler) Summary(c *gin.Context) {
	subreddit := c.Query("subreddit")
	if subreddit == "" {
		BadRequest(c, "Missing subreddit")
		return
	}

	key := summaryKey(subreddit)
	if cached, ok := h.cache.Get(key).(*InsightSummary); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	gen := h.generation.Load()
	var rows []models.SubredditInsight
	err := h.db.WithSession(c.Request.Context(), func(tx *gorm.DB) error {
		return tx.Where("subreddit_name = ?", subreddit).
			Order("recorded_at DESC").Order("id DESC").
			Find(&rows).Error
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	summary := &InsightSummary{Subreddit: subreddit, Metrics: latestPerMetric(rows)}
	h.cacheSummary(key, gen, summary)
	c.JSON(http.StatusOK, summary)
}

func (h *InsightHandler) invalidate(key string) {
	h.generation.Add(1)
	h.cache.Delete(key)
}

// cacheSummary stores summary unless a Store ran since gen was read.
func (h *InsightHandler) cacheSummary(key string, gen uint64, summary *InsightSummary) {
	if h.generation.Load() != gen {
		return
	}
	h.cache.Set(key, summary, summaryTTL)
	if h.generation.Load() != gen {
		h.cache.Delete(key)
	}
}

// latestPerMetric expects rows sorted newest first.
func latestPerMetric(rows []models.SubredditInsight) []MetricValue {
	seen := make(map[string]bool)
	out := make([]MetricValue, 0)
	for _, r := range rows {
		if seen[r.Metric] {
			continue
		}
		seen[r.Metric] = true
		out = append(out, MetricValue{Metric: r.Metric, Value: r.Value, RecordedAt: r.RecordedAt})
	}
	return out
}
