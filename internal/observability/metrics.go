package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_http_requests_total",
			Help: "Total number of HTTP requests processed by the meetup service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetup_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	reminderCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_reminder_cycles_total",
			Help: "Total number of reminder polling cycles.",
		},
	)
	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_reminders_sent_total",
			Help: "Total number of reminder notifications handed to the notifier.",
		},
		[]string{"kind"},
	)
	reminderSendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_reminder_send_errors_total",
			Help: "Total number of failed reminder dispatch attempts.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		reminderCyclesTotal,
		remindersSentTotal,
		reminderSendErrorsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncReminderCycle() {
	reminderCyclesTotal.Inc()
}

func IncReminderSent(kind string) {
	remindersSentTotal.WithLabelValues(kind).Inc()
}

func IncReminderSendError() {
	reminderSendErrorsTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
