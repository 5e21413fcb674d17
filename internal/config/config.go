package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Extract ExtractConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractConfig holds document extraction settings.
type ExtractConfig struct {
	// Pdftoppm is the poppler binary used to rasterize PDF pages.
	Pdftoppm string `mapstructure:"pdftoppm"`
	// DPI is the rasterization resolution for PDF pages.
	DPI int `mapstructure:"dpi"`
	// MaxFileSizeMB caps individual uploaded files.
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	// TimeoutSecs bounds a single backend call.
	TimeoutSecs int `mapstructure:"timeout_secs"`
	// RetryAttempts is the total number of tries per page call. 1 disables
	// retry so cost accounting stays exact.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// RetryDelaySecs is the base delay between retries.
	RetryDelaySecs int `mapstructure:"retry_delay_secs"`
}

// Load reads configuration from environment variables with the EXTRACTOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EXTRACTOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extraction defaults
	v.SetDefault("extract.pdftoppm", "pdftoppm")
	v.SetDefault("extract.dpi", 300)
	v.SetDefault("extract.max_file_size_mb", 50)
	v.SetDefault("extract.timeout_secs", 120)
	v.SetDefault("extract.retry_attempts", 1)
	v.SetDefault("extract.retry_delay_secs", 2)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "EXTRACTOS_SERVER_PORT",
		"server.read_timeout":      "EXTRACTOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "EXTRACTOS_SERVER_WRITE_TIMEOUT",
		"server.environment":       "EXTRACTOS_SERVER_ENVIRONMENT",
		"log.level":                "EXTRACTOS_LOG_LEVEL",
		"log.format":               "EXTRACTOS_LOG_FORMAT",
		"cors.allowed_origins":     "EXTRACTOS_CORS_ALLOWED_ORIGINS",
		"extract.pdftoppm":         "EXTRACTOS_EXTRACT_PDFTOPPM",
		"extract.dpi":              "EXTRACTOS_EXTRACT_DPI",
		"extract.max_file_size_mb": "EXTRACTOS_EXTRACT_MAX_FILE_SIZE_MB",
		"extract.timeout_secs":     "EXTRACTOS_EXTRACT_TIMEOUT_SECS",
		"extract.retry_attempts":   "EXTRACTOS_EXTRACT_RETRY_ATTEMPTS",
		"extract.retry_delay_secs": "EXTRACTOS_EXTRACT_RETRY_DELAY_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if EXTRACTOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("EXTRACTOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Extract = ExtractConfig{
		Pdftoppm:       v.GetString("extract.pdftoppm"),
		DPI:            v.GetInt("extract.dpi"),
		MaxFileSizeMB:  v.GetInt64("extract.max_file_size_mb"),
		TimeoutSecs:    v.GetInt("extract.timeout_secs"),
		RetryAttempts:  v.GetInt("extract.retry_attempts"),
		RetryDelaySecs: v.GetInt("extract.retry_delay_secs"),
	}

	return cfg, nil
}
