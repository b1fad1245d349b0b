// Command photobatch runs the batch image processing wizard as an HTTP
// service: upload up to 50 JPEG/PNG/HEIC files, assign naming metadata,
// and download a ZIP of resized, renamed JPEGs. All image data stays in
// memory for the lifetime of one session.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photobatch/internal/batch"
	"photobatch/internal/handlers"
	"photobatch/internal/logging"
	"photobatch/internal/metrics"
	"photobatch/internal/middleware"
	"photobatch/internal/naming"
	"photobatch/internal/pipeline"
	"photobatch/internal/session"
	"photobatch/internal/startup"
	"photobatch/internal/telemetry"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// HEIC support is optional: without libvips the service still handles
	// JPEG/PNG and reports HEIC conversions as per-item failures.
	if err := pipeline.Init(); err != nil {
		logging.Warn("libvips unavailable, HEIC uploads will be rejected: %v", err)
	}
	defer pipeline.Shutdown()

	var sink telemetry.Sink = telemetry.Noop{}
	if config.TelemetryDB != "" {
		sqlSink, err := telemetry.NewSQLiteSink(config.TelemetryDB)
		if err != nil {
			logging.Warn("Telemetry disabled: %v", err)
		} else {
			sink = sqlSink
		}
	}
	defer sink.Close()

	var lookup naming.LookupFunc
	if config.CodesURL != "" {
		lookup = naming.HTTPLookup(config.CodesURL)
	}
	registry := naming.NewRegistry(lookup)

	sess := session.New()
	sess.SetNoteTTL(config.NoteTTL)
	orch := batch.New(sess, sink, config.TargetWidth, config.TargetHeight)

	h := handlers.New(sess, orch, registry, config)
	router := setupRouter(h, config)

	loggedHandler := middleware.Logger(middleware.DefaultLoggingConfig())(router)
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv)

	logging.Info("photobatch listening on :%s (started in %s)", config.Port, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.HealthCheck).Methods("GET")
	r.HandleFunc("/readyz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods("POST")
	api.HandleFunc("/items", h.ListItems).Methods("GET")
	api.HandleFunc("/items/{id}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/items/{id}/metadata", h.ItemMetadata).Methods("PUT")
	api.HandleFunc("/metadata", h.BulkMetadata).Methods("POST")
	api.HandleFunc("/codes", h.ListCodes).Methods("GET")
	api.HandleFunc("/confirm", h.Confirm).Methods("POST")
	api.HandleFunc("/process", h.Process).Methods("POST")
	api.HandleFunc("/archive", h.Download).Methods("GET")
	api.HandleFunc("/reset", h.Reset).Methods("POST")
	api.HandleFunc("/status", h.Status).Methods("GET")

	return r
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
}
