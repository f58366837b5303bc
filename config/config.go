package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv retrieves environment variables with defaults
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt retrieves an integer environment variable with a default
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetEnvInt64 retrieves a 64-bit integer environment variable with a default
func GetEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetEnvFloat retrieves a float environment variable with a default
func GetEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// Config holds the application configuration loaded from the environment
type Config struct {
	Port string

	UploadDir string
	OutputDir string
	LogDir    string

	DefaultChunkSize int64
	MaxUploadSize    int64

	RetentionWindow time.Duration
	ReapInterval    time.Duration

	StreamInterval   time.Duration
	StreamMaxSamples int

	AnalyzerBin     string
	AnalyzerScript  string
	ReportBin       string
	ReportScript    string
	ModelComplexity int
	FFProbeBin      string
	DefaultFPS      float64
}

// Load builds a Config from environment variables, falling back to defaults
func Load() *Config {
	return &Config{
		Port: GetEnv("PORT", "8080"),

		UploadDir: GetEnv("UPLOAD_DIR", "uploads"),
		OutputDir: GetEnv("OUTPUT_DIR", "outputs"),
		LogDir:    GetEnv("LOG_DIR", "logs"),

		DefaultChunkSize: GetEnvInt64("DEFAULT_CHUNK_SIZE", 1024*1024),
		MaxUploadSize:    GetEnvInt64("MAX_UPLOAD_SIZE", 5*1024*1024*1024),

		RetentionWindow: time.Duration(GetEnvInt("RETENTION_HOURS", 24)) * time.Hour,
		ReapInterval:    time.Duration(GetEnvInt("REAP_INTERVAL_MINUTES", 60)) * time.Minute,

		StreamInterval:   time.Duration(GetEnvInt("STREAM_INTERVAL_SECONDS", 1)) * time.Second,
		StreamMaxSamples: GetEnvInt("STREAM_MAX_SAMPLES", 120),

		AnalyzerBin:     GetEnv("ANALYZER_BIN", "python3"),
		AnalyzerScript:  GetEnv("ANALYZER_SCRIPT", "main.py"),
		ReportBin:       GetEnv("REPORT_BIN", "python3"),
		ReportScript:    GetEnv("REPORT_SCRIPT", "analyze_ergonomics.py"),
		ModelComplexity: GetEnvInt("MODEL_COMPLEXITY", 2),
		FFProbeBin:      GetEnv("FFPROBE_BIN", "ffprobe"),
		DefaultFPS:      GetEnvFloat("DEFAULT_FPS", 30.0),
	}
}
