package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photobatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photobatch_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Ingest metrics
var (
	IngestFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_ingest_files_total",
			Help: "Total number of files offered at intake",
		},
		[]string{"status"}, // "accepted", "rejected"
	)

	IngestBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photobatch_ingest_bytes_total",
			Help: "Total bytes accepted at intake",
		},
	)
)

// Normalization metrics
var (
	NormalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_normalizations_total",
			Help: "Total number of format normalizations",
		},
		[]string{"format", "status"},
	)

	NormalizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photobatch_normalization_duration_seconds",
			Help:    "Format normalization duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"format"},
	)
)

// Thumbnail metrics
var (
	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_thumbnails_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photobatch_thumbnail_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Resize metrics
var (
	ResizesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_resizes_total",
			Help: "Total number of resize-and-pad operations",
		},
		[]string{"status"},
	)

	ResizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photobatch_resize_duration_seconds",
			Help:    "Resize-and-pad duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ResizeStepsPerImage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photobatch_resize_steps_per_image",
			Help:    "Number of staged downscale steps per image",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
	)
)

// Batch metrics
var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_batches_total",
			Help: "Total number of processing batches",
		},
		[]string{"status"}, // "complete", "failed"
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photobatch_batch_duration_seconds",
			Help:    "Batch processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	BatchItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photobatch_batch_items",
			Help:    "Number of items per batch by outcome",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40, 50},
		},
		[]string{"outcome"}, // "succeeded", "failed"
	)

	ArchiveBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photobatch_archive_bytes",
			Help:    "Size of finalized archives in bytes",
			Buckets: prometheus.ExponentialBuckets(64*1024, 4, 8),
		},
	)
)

// Session metrics
var (
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photobatch_session_state",
			Help: "Current wizard state (0=idle 1=loading 2=awaiting-metadata 3=awaiting-confirmation 4=processing 5=complete)",
		},
	)

	SessionResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photobatch_session_resets_total",
			Help: "Total number of session resets",
		},
	)
)

// Telemetry metrics
var (
	TelemetryEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photobatch_telemetry_events_total",
			Help: "Total number of telemetry events dispatched",
		},
		[]string{"status"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photobatch_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
