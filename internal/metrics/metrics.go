package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "task_tracker",
		Name:      "tasks_created_total",
		Help:      "Total tasks created.",
	})
	TasksUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "task_tracker",
		Name:      "tasks_updated_total",
		Help:      "Total task updates applied.",
	})
	TasksDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "task_tracker",
		Name:      "tasks_deleted_total",
		Help:      "Total tasks soft-deleted.",
	})
	TagsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "task_tracker",
		Name:      "tags_created_total",
		Help:      "Total tags inserted by the tag registry.",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "task_tracker",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "task_tracker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(TasksCreated, TasksUpdated, TasksDeleted, TagsCreated, HTTPRequests, HTTPRequestDuration)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
