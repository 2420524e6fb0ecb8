// internal/config/config.go

// Package config loads process configuration from the environment. A .env
// file, when present, is loaded by main before this package reads anything.
package config

import "os"

// Config is the full runtime configuration of the server process.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// VoiceAppID and VoiceAppSecret credential the voice token service. An
	// empty secret puts voice in test mode.
	VoiceAppID     string
	VoiceAppSecret string

	// RedisAddr enables the action historian when non-empty.
	RedisAddr string

	// LogLevel is a logrus level name; defaults to info.
	LogLevel string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Addr:           getenv("ADDR", ":8080"),
		VoiceAppID:     os.Getenv("VOICE_APP_ID"),
		VoiceAppSecret: os.Getenv("VOICE_APP_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
