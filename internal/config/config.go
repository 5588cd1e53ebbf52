package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service's runtime settings, loaded from environment.
// Load from env and/or a .env file (LoadEnvFile, called before Load).
type Config struct {
	M3USource         string // playlist URL or local file path
	EncoderPreference string // "auto" | "<profile-name>" | "cpu"
	IdleTimeout       time.Duration
	Port              int
	MaxStreamSize     int64 // bytes; triggers child recycle when exceeded

	FFmpegPath     string
	MetricsAddr    string // "" = serve /metrics on Port alongside the API
	MaxConnections int    // LimitListener ceiling
}

// Load reads config from environment.
func Load() *Config {
	c := &Config{
		M3USource:         os.Getenv("M3U_SOURCE"),
		EncoderPreference: getEnv("ENCODER_PREFERENCE", "auto"),
		IdleTimeout:       getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		Port:              getEnvInt("PORT", 8080),
		MaxStreamSize:     getEnvInt64("MAX_STREAM_SIZE", 500*1024*1024),
		FFmpegPath:        getEnv("FFMPEG_PATH", "ffmpeg"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		MaxConnections:    getEnvInt("MAX_CONNECTIONS", 4096),
	}
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.MaxStreamSize <= 0 {
		c.MaxStreamSize = 500 * 1024 * 1024
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 4096
	}
	return c
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return defaultVal
}
