package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"accepted", "rejected"} {
		IngestFilesTotal.WithLabelValues(status)
	}

	for _, format := range []string{"jpeg", "png", "heic", "heif"} {
		NormalizationsTotal.WithLabelValues(format, "success")
		NormalizationsTotal.WithLabelValues(format, "error")
		NormalizationDuration.WithLabelValues(format)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailsTotal.WithLabelValues(status)
		ResizesTotal.WithLabelValues(status)
		TelemetryEventsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"complete", "failed"} {
		BatchesTotal.WithLabelValues(status)
	}

	for _, outcome := range []string{"succeeded", "failed"} {
		BatchItems.WithLabelValues(outcome)
	}
}
