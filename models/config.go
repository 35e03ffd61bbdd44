package models

import "time"

// Config holds all configuration for the client
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Remote field-service API
	APIBaseURL     string        `mapstructure:"api_base_url"`
	APIToken       string        `mapstructure:"api_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Technician identity. Normally derived from the API token claims;
	// this is an explicit override.
	TechnicianID string `mapstructure:"technician_id"`

	// Sync intervals (seconds, second-precision cron schedules)
	JobPollSeconds   int `mapstructure:"job_poll_seconds"`
	StatsPollSeconds int `mapstructure:"stats_poll_seconds"`

	// Media capture
	VideoMaxSeconds int `mapstructure:"video_max_seconds"`

	// Snapshot cache persistence
	SnapshotFilePath string `mapstructure:"snapshot_file_path"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Base Path
	BasePath string `mapstructure:"basePath"`
}
