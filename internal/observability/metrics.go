package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce      sync.Once
	requestsTotal     *prometheus.CounterVec
	latencySeconds    *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	coursesSavedTotal *prometheus.CounterVec
	coursesDeleted    prometheus.Counter
	transferRowsTotal *prometheus.CounterVec
	transferExports   prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grademetrix_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grademetrix_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grademetrix_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		coursesSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grademetrix_courses_saved_total",
			Help: "Course upserts, partitioned by created vs updated.",
		}, []string{"result"})

		coursesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grademetrix_courses_deleted_total",
			Help: "Course records deleted.",
		})

		transferRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grademetrix_transfer_rows_total",
			Help: "Spreadsheet import rows, partitioned by outcome.",
		}, []string{"result"})

		transferExports = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grademetrix_transfer_exports_total",
			Help: "Workbook exports produced.",
		})

		prometheus.MustRegister(
			requestsTotal, latencySeconds, errorsTotal,
			coursesSavedTotal, coursesDeleted, transferRowsTotal, transferExports,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// CoursesSaved exposes the course-upsert counter.
func CoursesSaved() *prometheus.CounterVec {
	RegisterMetrics()
	return coursesSavedTotal
}

// CoursesDeleted exposes the course-deletion counter.
func CoursesDeleted() prometheus.Counter {
	RegisterMetrics()
	return coursesDeleted
}

// TransferRows exposes the import-row counter.
func TransferRows() *prometheus.CounterVec {
	RegisterMetrics()
	return transferRowsTotal
}

// TransferExports exposes the export counter.
func TransferExports() prometheus.Counter {
	RegisterMetrics()
	return transferExports
}

// MetricsHandler serves the Prometheus scrape endpoint for the grade API.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
