package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	VerdictCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_verdicts_total",
			Help: "Graded questions by type and outcome",
		},
		[]string{"question_type", "outcome"},
	)

	InvalidQuestionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_invalid_questions_total",
			Help: "Questions skipped during grading because their data is malformed",
		},
		[]string{"question_type"},
	)

	ExamStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exam_stream_connections",
			Help: "Open exam websocket connections",
		},
	)
)

// Outcome labels of quiz_verdicts_total.
const (
	OutcomeCorrect    = "correct"
	OutcomeIncorrect  = "incorrect"
	OutcomeUnanswered = "unanswered"
)

// Init registers every collector with the default registry. Call once.
func Init() {
	prometheus.MustRegister(RequestCounter, RequestDuration, VerdictCounter, InvalidQuestionCounter, ExamStreams)
}

// Middleware records request counts and latencies per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Outcome classifies a verdict for quiz_verdicts_total.
func Outcome(v quiz.Verdict) string {
	switch {
	case !v.Answered:
		return OutcomeUnanswered
	case v.IsCorrect:
		return OutcomeCorrect
	default:
		return OutcomeIncorrect
	}
}

// ObserveVerdicts counts each verdict once under its type and outcome. Case
// studies count once per sub-question under the case_study label.
func ObserveVerdicts(verdicts ...quiz.Verdict) {
	for _, v := range verdicts {
		if v.Type == quiz.TypeCaseStudy {
			for _, sv := range v.SubVerdicts {
				VerdictCounter.WithLabelValues(string(quiz.TypeCaseStudy), Outcome(sv)).Inc()
			}
			continue
		}
		VerdictCounter.WithLabelValues(string(v.Type), Outcome(v)).Inc()
	}
}

// ObserveInvalid counts one question skipped for invalid data.
func ObserveInvalid(t quiz.Type) {
	InvalidQuestionCounter.WithLabelValues(string(t)).Inc()
}
