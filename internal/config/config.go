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
	Staging StagingConfig
	Gemini  GeminiConfig
	Batch   BatchConfig
	Archive ArchiveConfig
	Export  ExportConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// StagingConfig holds local staging settings for uploaded documents.
type StagingConfig struct {
	// Dir is the directory staged files are written to.
	// Empty means the OS temp directory.
	Dir string `mapstructure:"dir"`
}

// GeminiConfig holds settings for the Gemini extraction client.
type GeminiConfig struct {
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	// UploadEndpoint and GenerateEndpoint override the Gemini API URLs.
	// Empty means the public API; set only in tests.
	UploadEndpoint   string `mapstructure:"upload_endpoint"`
	GenerateEndpoint string `mapstructure:"generate_endpoint"`
}

// BatchConfig holds per-batch processing limits.
type BatchConfig struct {
	MaxFiles      int   `mapstructure:"max_files"`
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	// Concurrency bounds parallel per-document extraction.
	// 1 preserves strict sequential processing.
	Concurrency int `mapstructure:"concurrency"`
}

// ArchiveConfig holds settings for archival of uploaded documents to S3.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	SheetName string `mapstructure:"sheet_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FACTURA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Staging defaults
	v.SetDefault("staging.dir", "")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.default_model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout_secs", 120)
	v.SetDefault("gemini.upload_endpoint", "")
	v.SetDefault("gemini.generate_endpoint", "")

	// Batch defaults
	v.SetDefault("batch.max_files", 20)
	v.SetDefault("batch.max_file_size_mb", 50)
	v.SetDefault("batch.concurrency", 1)

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "factura-uploads")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")

	// Export defaults
	v.SetDefault("export.sheet_name", "Invoices")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "FACTURA_SERVER_PORT",
		"server.read_timeout":      "FACTURA_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "FACTURA_SERVER_WRITE_TIMEOUT",
		"server.environment":       "FACTURA_SERVER_ENVIRONMENT",
		"staging.dir":              "FACTURA_STAGING_DIR",
		"gemini.api_key":           "FACTURA_GEMINI_API_KEY",
		"gemini.default_model":     "FACTURA_GEMINI_DEFAULT_MODEL",
		"gemini.timeout_secs":      "FACTURA_GEMINI_TIMEOUT_SECS",
		"gemini.upload_endpoint":   "FACTURA_GEMINI_UPLOAD_ENDPOINT",
		"gemini.generate_endpoint": "FACTURA_GEMINI_GENERATE_ENDPOINT",
		"batch.max_files":          "FACTURA_BATCH_MAX_FILES",
		"batch.max_file_size_mb":   "FACTURA_BATCH_MAX_FILE_SIZE_MB",
		"batch.concurrency":        "FACTURA_BATCH_CONCURRENCY",
		"archive.enabled":          "FACTURA_ARCHIVE_ENABLED",
		"archive.region":           "FACTURA_ARCHIVE_REGION",
		"archive.bucket":           "FACTURA_ARCHIVE_BUCKET",
		"archive.endpoint":         "FACTURA_ARCHIVE_ENDPOINT",
		"archive.access_key":       "FACTURA_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":       "FACTURA_ARCHIVE_SECRET_KEY",
		"export.sheet_name":        "FACTURA_EXPORT_SHEET_NAME",
		"cors.allowed_origins":     "FACTURA_CORS_ALLOWED_ORIGINS",
		"log.level":                "FACTURA_LOG_LEVEL",
		"log.format":               "FACTURA_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FACTURA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FACTURA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Staging = StagingConfig{
		Dir: v.GetString("staging.dir"),
	}
	cfg.Gemini = GeminiConfig{
		APIKey:           v.GetString("gemini.api_key"),
		DefaultModel:     v.GetString("gemini.default_model"),
		TimeoutSecs:      v.GetInt("gemini.timeout_secs"),
		UploadEndpoint:   v.GetString("gemini.upload_endpoint"),
		GenerateEndpoint: v.GetString("gemini.generate_endpoint"),
	}
	cfg.Batch = BatchConfig{
		MaxFiles:      v.GetInt("batch.max_files"),
		MaxFileSizeMB: v.GetInt64("batch.max_file_size_mb"),
		Concurrency:   v.GetInt("batch.concurrency"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
	}
	cfg.Export = ExportConfig{
		SheetName: v.GetString("export.sheet_name"),
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

	return cfg, nil
}
