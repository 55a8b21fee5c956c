// Package metrics 定义 Prometheus 指标（promauto 注册到默认 Registry），由 /metrics 暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRequests 按结果统计 Feed 请求：ok / empty / error
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrec_feed_requests_total",
			Help: "Total number of personalized feed requests by status",
		},
		[]string{"status"},
	)

	FeedSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrec_feed_size",
			Help:    "Number of items returned per feed",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	FeedLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrec_feed_duration_seconds",
			Help:    "Feed generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Interactions 按行为类型统计写入的交互
	Interactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrec_interactions_total",
			Help: "Total number of recorded interactions by kind",
		},
		[]string{"kind"},
	)

	FilteredCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrec_filtered_candidates_total",
			Help: "Candidates removed by feed filters",
		},
		[]string{"filter"},
	)

	// FeedbackDropped 按原因统计丢弃的反馈事件：buffer_full / producer_full / closed
	FeedbackDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrec_feedback_dropped_total",
			Help: "Feedback events dropped before reaching the broker",
		},
		[]string{"reason"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrec_api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrec_api_request_duration_seconds",
			Help:    "HTTP API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordFeed 记录一次 Feed 请求。
func RecordFeed(size int, duration time.Duration, err error) {
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case size == 0:
		status = "empty"
	}
	FeedRequests.WithLabelValues(status).Inc()
	FeedLatency.Observe(duration.Seconds())
	if err == nil {
		FeedSize.Observe(float64(size))
	}
}

// RecordInteraction 记录一次交互写入。
func RecordInteraction(kind string) {
	Interactions.WithLabelValues(kind).Inc()
}

// RecordFiltered 记录一个被过滤的候选。
func RecordFiltered(filter string) {
	FilteredCandidates.WithLabelValues(filter).Inc()
}

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordFeedbackDropped 记录丢弃的反馈事件数。
func RecordFeedbackDropped(reason string, n int) {
	if n > 0 {
		FeedbackDropped.WithLabelValues(reason).Add(float64(n))
	}
}
