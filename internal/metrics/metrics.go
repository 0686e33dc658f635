package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginsTotal counts login attempts by outcome (success, invalid_credentials, error).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// AuthRejectionsTotal counts requests rejected by the auth middleware, by error code.
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_auth_rejections_total",
			Help: "Total number of requests rejected by authentication or authorization",
		},
		[]string{"code"},
	)

	// PostsCreatedTotal counts successfully created posts.
	PostsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_posts_created_total",
			Help: "Total number of posts created",
		},
	)
)

var (
	// Post and comment ids are uuids; category ids are numeric.
	idPathSegment = regexp.MustCompile(`/([0-9]+|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})(/|$)`)
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginsTotal, AuthRejectionsTotal, PostsCreatedTotal)
	})
}

// NormalizePath reduces cardinality by replacing id path segments with {id}.
// E.g. /api/posts/0b9c...e1/comments -> /api/posts/{id}/comments.
func NormalizePath(path string) string {
	return idPathSegment.ReplaceAllString(path, "/{id}$2")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncLogin records a login attempt outcome.
func IncLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

// IncAuthRejection records a request rejected with the given error code.
func IncAuthRejection(code string) {
	AuthRejectionsTotal.WithLabelValues(code).Inc()
}

func IncPostsCreated() {
	PostsCreatedTotal.Inc()
}
