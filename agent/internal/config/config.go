// Package config holds the Node Agent's runtime configuration, sourced from
// environment variables with defaults, mirroring the Scheduler and
// Controller's own envOrDefault idiom.
package config

import "os"

// Config holds every tunable the Node Agent reads at startup.
type Config struct {
	SchedulerAddr string
	Certificate   string // presented to the Scheduler's Register RPC

	DockerHost string // empty uses the Docker SDK's default (DOCKER_HOST or the local socket)

	InstanceAddr string // InstanceService listen address, dialed by the Scheduler at <node-ip>:7777 (registry.agentPort); keep the port in sync with that constant

	StateDir string

	LogLevel string
}

// Defaults returns a Config populated from environment variables, falling
// back to sensible development defaults for anything unset.
func Defaults() *Config {
	return &Config{
		SchedulerAddr: envOrDefault("FLEETD_SCHEDULER_ADDR", "127.0.0.1:7000"),
		Certificate:   envOrDefault("FLEETD_NODE_CERTIFICATE", ""),
		DockerHost:    envOrDefault("FLEETD_DOCKER_HOST", ""),
		InstanceAddr:  envOrDefault("FLEETD_AGENT_INSTANCE_ADDR", "0.0.0.0:7777"),
		StateDir:      envOrDefault("FLEETD_AGENT_STATE_DIR", "/var/lib/fleetd-agent"),
		LogLevel:      envOrDefault("FLEETD_LOG_LEVEL", "info"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
