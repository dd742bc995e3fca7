package engine

import "time"

type ApplicationConfig struct {
	// The application name used in log lines.
	Name string
	// SettingsPath is the TOML settings file. It is watched for changes.
	// Empty means built-in defaults and no watching.
	SettingsPath string
	// LogLevel overrides the level of the settings file when set.
	LogLevel string
	// TickInterval is how often host timers are advanced by Run.
	TickInterval time.Duration
	// QueueSize bounds the number of host events waiting for Run.
	QueueSize int
}

func (c *ApplicationConfig) withDefaults() *ApplicationConfig {
	out := *c
	if out.Name == "" {
		out.Name = "facetrack"
	}
	if out.TickInterval <= 0 {
		out.TickInterval = 50 * time.Millisecond
	}
	if out.QueueSize <= 0 {
		out.QueueSize = 64
	}
	return &out
}
