package startup

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"photobatch/internal/logging"

	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port           string
	MetricsEnabled bool

	// TelemetryDB is the path of the SQLite usage-event store; empty
	// disables telemetry.
	TelemetryDB string

	// CodesURL is the optional external industry-code lookup endpoint.
	CodesURL string

	// Output canvas dimensions.
	TargetWidth  int
	TargetHeight int

	// NoteTTL is how long per-item error notes stay visible.
	NoteTTL time.Duration
}

// LoadConfig loads configuration from the environment, after loading an
// optional .env file, and logs the effective values.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		logging.Info("Loaded environment from .env")
	}

	printBanner()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		TelemetryDB:    getEnv("TELEMETRY_DB", "photobatch-usage.db"),
		CodesURL:       getEnv("CODES_URL", ""),
		TargetWidth:    getEnvInt("TARGET_WIDTH", 600),
		TargetHeight:   getEnvInt("TARGET_HEIGHT", 400),
		NoteTTL:        getEnvDuration("ERROR_NOTE_TTL", 10*time.Second),
	}

	if cfg.TargetWidth < 1 || cfg.TargetHeight < 1 {
		return nil, fmt.Errorf("invalid target canvas %dx%d", cfg.TargetWidth, cfg.TargetHeight)
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  PORT:             %s", cfg.Port)
	logging.Info("  METRICS_ENABLED:  %v", cfg.MetricsEnabled)
	logging.Info("  TELEMETRY_DB:     %s", orNone(cfg.TelemetryDB))
	logging.Info("  CODES_URL:        %s", orNone(cfg.CodesURL))
	logging.Info("  TARGET CANVAS:    %dx%d", cfg.TargetWidth, cfg.TargetHeight)
	logging.Info("  ERROR_NOTE_TTL:   %s", cfg.NoteTTL)
	logging.Info("  LOG_LEVEL:        %s", logging.GetLevel())

	return cfg, nil
}

func printBanner() {
	logging.Info("photobatch %s (commit %s, built %s, %s %s/%s)",
		Version, Commit, BuildTime, GoVersion, runtime.GOOS, runtime.GOARCH)
}

func orNone(s string) string {
	if s == "" {
		return "(disabled)"
	}
	return s
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("  Invalid %s=%q, using default: %v", key, v, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn("  Invalid %s=%q, using default: %d", key, v, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		logging.Warn("  Invalid %s=%q, using default: %s", key, v, fallback)
		return fallback
	}
	return parsed
}

// LogFatal logs a fatal startup error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
