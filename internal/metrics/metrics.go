package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewflow",
		Name:      "gateway_requests_total",
		Help:      "Total number of backend API requests issued by the client",
	}, []string{"op", "code"})

	gatewayLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "interviewflow",
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of backend API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	submissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interviewflow",
		Name:      "answer_submissions_total",
		Help:      "Total number of answers graded successfully",
	})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interviewflow",
		Name:      "sessions_completed_total",
		Help:      "Total number of interview sessions run to completion",
	})

	speechRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interviewflow",
		Name:      "speech_capture_restarts_total",
		Help:      "Total number of automatic speech capture restarts",
	})

	execTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interviewflow",
		Name:      "code_execution_timeouts_total",
		Help:      "Total number of code executions aborted by the client-side timeout",
	})
)

// ObserveGateway records one completed backend request.
func ObserveGateway(op, code string, duration time.Duration) {
	gatewayRequests.WithLabelValues(op, code).Inc()
	gatewayLatency.WithLabelValues(op).Observe(duration.Seconds())
}

func RecordSubmission()       { submissions.Inc() }
func RecordSessionCompleted() { sessionsCompleted.Inc() }
func RecordSpeechRestart()    { speechRestarts.Inc() }
func RecordExecTimeout()      { execTimeouts.Inc() }
