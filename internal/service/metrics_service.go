package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	triggersGenerated prometheus.Counter
	notificationsSent prometheus.Counter
	checkins          *prometheus.CounterVec
	penaltiesApplied  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	triggersGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_triggers_generated_total",
		Help: "Total daily triggers created, scheduled and manual",
	})

	notificationsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_notifications_sent_total",
		Help: "Total call-up notifications dispatched",
	})

	checkins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_checkins_total",
		Help: "Check-in attempts by result",
	}, []string{"result"})

	penaltiesApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_penalties_applied_total",
		Help: "Total point deductions applied to absentees",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, triggersGenerated, notificationsSent, checkins, penaltiesApplied, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		triggersGenerated: triggersGenerated,
		notificationsSent: notificationsSent,
		checkins:          checkins,
		penaltiesApplied:  penaltiesApplied,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// TriggerGenerated counts one created trigger.
func (m *MetricsService) TriggerGenerated() {
	if m == nil {
		return
	}
	m.triggersGenerated.Inc()
}

// NotificationSent counts one dispatched call-up.
func (m *MetricsService) NotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

// CheckInObserved counts a check-in attempt by outcome label
// (accepted, duplicate, out_of_range, closed).
func (m *MetricsService) CheckInObserved(result string) {
	if m == nil {
		return
	}
	m.checkins.WithLabelValues(result).Inc()
}

// PenaltyApplied counts one successful point deduction.
func (m *MetricsService) PenaltyApplied() {
	if m == nil {
		return
	}
	m.penaltiesApplied.Inc()
}
