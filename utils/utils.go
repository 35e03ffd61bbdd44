package utils

import (
	"encoding/json"
	"fieldops-client/models"

	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	// Set default values
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	// Handle nested JSON structure from config.json
	if v.IsSet("app") || v.IsSet("api") || v.IsSet("sync") {
		flattenNestedConfig(v)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Parse request timeout if it's a string
	if v.IsSet("request_timeout") {
		timeoutStr := v.GetString("request_timeout")
		if timeoutStr != "" {
			if timeout, err := time.ParseDuration(timeoutStr); err != nil {
				return nil, fmt.Errorf("invalid request_timeout format: %w", err)
			} else {
				config.RequestTimeout = timeout
			}
		}
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "FieldOps Client")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "127.0.0.1")
	v.SetDefault("app_port", "8082")

	// Remote API defaults
	v.SetDefault("api_base_url", "http://localhost:8081/api/v1")
	v.SetDefault("api_token", "")
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("technician_id", "")

	// Sync defaults: job list every 8s, stats/clock every 60s
	v.SetDefault("job_poll_seconds", 8)
	v.SetDefault("stats_poll_seconds", 60)

	// Media capture defaults
	v.SetDefault("video_max_seconds", 10)

	// Snapshot cache defaults
	v.SetDefault("snapshot_file_path", "/tmp/fieldops-snapshots.json")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"*"})

	// Base Path default
	v.SetDefault("basePath", "/api/v1")
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}

	if c.TechnicianID == "" && c.APIToken == "" {
		return fmt.Errorf("either technician_id or api_token must be set")
	}

	if c.JobPollSeconds <= 0 || c.JobPollSeconds > 59 {
		return fmt.Errorf("job_poll_seconds must be between 1 and 59")
	}

	if c.StatsPollSeconds <= 0 {
		return fmt.Errorf("stats_poll_seconds must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}

	if c.VideoMaxSeconds <= 0 {
		return fmt.Errorf("video_max_seconds must be positive")
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	// App section
	if v.IsSet("app.name") {
		v.Set("app_name", v.GetString("app.name"))
	}
	if v.IsSet("app.version") {
		v.Set("app_version", v.GetString("app.version"))
	}
	if v.IsSet("app.env") {
		v.Set("app_env", v.GetString("app.env"))
	}
	if v.IsSet("app.host") {
		v.Set("app_host", v.GetString("app.host"))
	}
	if v.IsSet("app.port") {
		v.Set("app_port", v.GetString("app.port"))
	}

	// API section
	if v.IsSet("api.base_url") {
		v.Set("api_base_url", v.GetString("api.base_url"))
	}
	if v.IsSet("api.token") {
		v.Set("api_token", v.GetString("api.token"))
	}
	if v.IsSet("api.request_timeout") {
		v.Set("request_timeout", v.GetString("api.request_timeout"))
	}
	if v.IsSet("api.technician_id") {
		v.Set("technician_id", v.GetString("api.technician_id"))
	}

	// Sync section
	if v.IsSet("sync.job_poll_seconds") {
		v.Set("job_poll_seconds", v.GetInt("sync.job_poll_seconds"))
	}
	if v.IsSet("sync.stats_poll_seconds") {
		v.Set("stats_poll_seconds", v.GetInt("sync.stats_poll_seconds"))
	}
	if v.IsSet("sync.snapshot_file_path") {
		v.Set("snapshot_file_path", v.GetString("sync.snapshot_file_path"))
	}

	// Capture section
	if v.IsSet("capture.video_max_seconds") {
		v.Set("video_max_seconds", v.GetInt("capture.video_max_seconds"))
	}

	// Logging section
	if v.IsSet("logging.level") {
		v.Set("log_level", v.GetString("logging.level"))
	}
	if v.IsSet("logging.format") {
		v.Set("log_format", v.GetString("logging.format"))
	}

	// CORS section
	if v.IsSet("cors.origins") {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}

	// Base Path
	if v.IsSet("basePath") {
		v.Set("basePath", v.GetString("basePath"))
	}
}

// TechnicianID resolves the technician identity: the explicit config
// override wins, otherwise it is read from the API token claims.
func TechnicianID(cfg *models.Config) (string, error) {
	if cfg.TechnicianID != "" {
		return cfg.TechnicianID, nil
	}
	return TechnicianFromToken(cfg.APIToken)
}

// TechnicianFromToken extracts the technician ID from a JWT's claims without
// verifying the signature. Verification belongs to the remote API, not this
// client.
func TechnicianFromToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("no API token configured")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse API token: %w", err)
	}

	if id, ok := claims["technician_id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}

	return "", fmt.Errorf("API token carries no technician identity")
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ") // 4 spaces indent
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// DateKey formats a time as the calendar-day key used for clock records.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
