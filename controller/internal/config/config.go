// Package config holds the Controller's runtime configuration, sourced from
// environment variables with defaults, mirroring the Scheduler's own
// envOrDefault idiom.
package config

import (
	"os"
	"strings"
	"time"
)

// Config holds every tunable the Controller reads at startup.
type Config struct {
	HTTPAddr      string
	GRPCAddr      string
	SchedulerAddr string

	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	ReconcileInterval time.Duration
	PruneAfter        time.Duration

	AlertWebhooks []string

	LogLevel string
}

// Defaults returns a Config populated from environment variables, falling
// back to sensible development defaults for anything unset.
func Defaults() *Config {
	return &Config{
		HTTPAddr:          EnvOrDefault("FLEETD_CONTROLLER_HTTP_ADDR", "127.0.0.1:8080"),
		GRPCAddr:          EnvOrDefault("FLEETD_CONTROLLER_GRPC_ADDR", "0.0.0.0:7100"),
		SchedulerAddr:     EnvOrDefault("FLEETD_SCHEDULER_ADDR", "127.0.0.1:7000"),
		DBDriver:          EnvOrDefault("FLEETD_CONTROLLER_DB_DRIVER", "sqlite"),
		DBDSN:             EnvOrDefault("FLEETD_CONTROLLER_DB_DSN", "fleetd-controller.db"),
		ReconcileInterval: envOrDefaultDuration("FLEETD_CONTROLLER_RECONCILE_INTERVAL", 15*time.Second),
		PruneAfter:        envOrDefaultDuration("FLEETD_CONTROLLER_PRUNE_AFTER", 24*time.Hour),
		AlertWebhooks:     envOrDefaultList("FLEETD_CONTROLLER_ALERT_WEBHOOKS", nil),
		LogLevel:          EnvOrDefault("FLEETD_LOG_LEVEL", "info"),
	}
}

// EnvOrDefault returns the environment variable named key, or defaultVal if unset or empty.
func EnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envOrDefaultList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
