package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds relay server configuration, loaded from environment
// variables with defaults.
type Config struct {
	Addr string

	CanvasWidth  float64
	CanvasHeight float64

	// Per-connection event budget: EventRateLimit admits per window.
	EventRateLimit  int
	EventRateWindow time.Duration

	// Per-IP connection attempts per second at the upgrade handler.
	ConnRatePerIP float64

	ReadBufferSize  int
	WriteBufferSize int

	BridgeEnabled bool
}

// FromEnv loads configuration from environment variables.
func FromEnv() *Config {
	return &Config{
		Addr:            envStr("RELAY_ADDR", ":8080"),
		CanvasWidth:     float64(envInt("RELAY_CANVAS_WIDTH", 10000)),
		CanvasHeight:    float64(envInt("RELAY_CANVAS_HEIGHT", 10000)),
		EventRateLimit:  envInt("RELAY_EVENT_RATE_LIMIT", 100),
		EventRateWindow: time.Duration(envInt("RELAY_EVENT_RATE_WINDOW_MS", 1000)) * time.Millisecond,
		ConnRatePerIP:   float64(envInt("RELAY_CONN_RATE_PER_IP", 10)),
		ReadBufferSize:  envInt("RELAY_READ_BUFFER", 1024),
		WriteBufferSize: envInt("RELAY_WRITE_BUFFER", 1024),
		BridgeEnabled:   envBool("RELAY_BRIDGE_ENABLED", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
