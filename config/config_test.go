package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()

	assert.Equal(t, c.Port, "8080")
	assert.Equal(t, c.UploadDir, "uploads")
	assert.Equal(t, c.OutputDir, "outputs")
	assert.Equal(t, c.LogDir, "logs")
	assert.Equal(t, c.DefaultChunkSize, int64(1024*1024))
	assert.Equal(t, c.MaxUploadSize, int64(5*1024*1024*1024))
	assert.Equal(t, c.RetentionWindow, 24*time.Hour)
	assert.Equal(t, c.ReapInterval, time.Hour)
	assert.Equal(t, c.StreamInterval, time.Second)
	assert.Equal(t, c.StreamMaxSamples, 120)
	assert.Equal(t, c.AnalyzerBin, "python3")
	assert.Equal(t, c.AnalyzerScript, "main.py")
	assert.Equal(t, c.ReportBin, "python3")
	assert.Equal(t, c.ReportScript, "analyze_ergonomics.py")
	assert.Equal(t, c.ModelComplexity, 2)
	assert.Equal(t, c.FFProbeBin, "ffprobe")
	assert.Equal(t, c.DefaultFPS, 30.0)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RETENTION_HOURS", "48")
	t.Setenv("STREAM_MAX_SAMPLES", "240")
	t.Setenv("DEFAULT_FPS", "24.0")

	c := Load()

	assert.Equal(t, c.Port, "9090")
	assert.Equal(t, c.RetentionWindow, 48*time.Hour)
	assert.Equal(t, c.StreamMaxSamples, 240)
	assert.Equal(t, c.DefaultFPS, 24.0)
}

func TestGetEnvHelpersIgnoreMalformedValues(t *testing.T) {
	t.Setenv("RETENTION_HOURS", "not-a-number")
	t.Setenv("DEFAULT_FPS", "fast")

	assert.Equal(t, 24, GetEnvInt("RETENTION_HOURS", 24))
	assert.Equal(t, 30.0, GetEnvFloat("DEFAULT_FPS", 30.0))
	assert.Equal(t, int64(7), GetEnvInt64("MISSING_KEY", 7))
	assert.Equal(t, "fallback", GetEnv("MISSING_KEY", "fallback"))
}
