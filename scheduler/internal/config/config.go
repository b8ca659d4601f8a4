// Package config defines the Scheduler's configuration surface: Cobra
// persistent flags, each defaulted from an environment variable, following
// the same envOrDefault idiom used across every fleetd process.
package config

import "os"

// Config holds every tunable the Scheduler process needs at startup.
type Config struct {
	Host string
	Port string

	ControllerHost string
	ControllerPort string

	LogLevel string

	// AgentBackoffInitial and AgentBackoffMax are read from the environment
	// only; no flag sets them and nothing reads them. Agent connections use
	// the gRPC client's built-in reconnect behaviour.
	AgentBackoffInitial string
	AgentBackoffMax     string

	MetricsAddr string
}

// Defaults returns a Config populated from environment variables, falling
// back to the documented defaults when unset.
func Defaults() *Config {
	return &Config{
		Host:                EnvOrDefault("FLEETD_SCHEDULER_HOST", "0.0.0.0"),
		Port:                EnvOrDefault("FLEETD_SCHEDULER_PORT", "7000"),
		ControllerHost:      EnvOrDefault("FLEETD_CONTROLLER_HOST", "127.0.0.1"),
		ControllerPort:      EnvOrDefault("FLEETD_CONTROLLER_PORT", "7100"),
		LogLevel:            EnvOrDefault("FLEETD_LOG_LEVEL", "info"),
		AgentBackoffInitial: EnvOrDefault("FLEETD_AGENT_BACKOFF_INITIAL", "1s"),
		AgentBackoffMax:     EnvOrDefault("FLEETD_AGENT_BACKOFF_MAX", "60s"),
		MetricsAddr:         EnvOrDefault("FLEETD_SCHEDULER_METRICS_ADDR", ":9091"),
	}
}

// EnvOrDefault returns the environment variable's value, or defaultVal if unset.
func EnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
