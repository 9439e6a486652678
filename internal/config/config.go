package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Game      GameConfig
	Store     StoreConfig
	Transport TransportConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	Env            string   `env:"ENV" envDefault:"development"` // "development" or "production"
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers       int           `env:"MIN_PLAYERS" envDefault:"3"`
	RoomCodeAttempts int           `env:"ROOM_CODE_ATTEMPTS" envDefault:"30"`
	DisconnectGrace  time.Duration `env:"DISCONNECT_GRACE" envDefault:"10m"`
	RoomTTL          time.Duration `env:"ROOM_TTL" envDefault:"2h"`
	RoomEmptyTTL     time.Duration `env:"ROOM_EMPTY_TTL" envDefault:"10m"`
	TopicCategory    string        `env:"TOPIC_CATEGORY"`
	TopicDifficulty  int           `env:"TOPIC_DIFFICULTY" envDefault:"0"`
}

// StoreConfig selects and configures the room store
type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" envDefault:"memory"` // "memory" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	SweepSchedule string `env:"STORE_SWEEP_SCHEDULE" envDefault:"@every 1m"`
}

// TransportConfig holds websocket tuning
type TransportConfig struct {
	MessagesPerSecond float64 `env:"WS_MESSAGES_PER_SECOND" envDefault:"10"`
	Burst             int     `env:"WS_BURST" envDefault:"20"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// TelemetryConfig controls OTLP tracing. An empty endpoint disables it.
type TelemetryConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"impostor"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Store.Driver != "memory" && cfg.Store.Driver != "redis" {
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
