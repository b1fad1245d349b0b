package handlers

import (
	"net/http"
	"runtime"
	"time"

	"photobatch/internal/pipeline"
	"photobatch/internal/startup"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	State         string `json:"state"`
	HEICSupported bool   `json:"heicSupported"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, HealthResponse{
		Status:        "healthy",
		Version:       startup.Version,
		Uptime:        time.Since(h.startedAt).Round(time.Second).String(),
		State:         h.sess.State().String(),
		HEICSupported: pipeline.HEICAvailable(),
		GoVersion:     runtime.Version(),
		NumGoroutine:  runtime.NumGoroutine(),
	})
}

// GetVersion returns build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, startup.GetBuildInfo())
}
