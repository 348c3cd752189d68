package config

import "github.com/caarlos0/env/v11"

// Application settings
type Config struct {
	Server  ServerConfig  `envPrefix:""`
	Logging LoggingConfig `envPrefix:""`
	Ingest  IngestConfig  `envPrefix:"INGEST_"`
	Cache   CacheConfig   `envPrefix:"CACHE_"`
}

// Server settings
type ServerConfig struct {
	Port           string  `env:"PORT" envDefault:"8080"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// Logging settings
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Ingestion settings. The row thresholds are advisory: crossing one adds a
// warning to the file's result, nothing is rejected for size.
type IngestConfig struct {
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"16777216"`
	LargeFileRows  int   `env:"LARGE_FILE_ROWS" envDefault:"10000"`
	HugeFileRows   int   `env:"HUGE_FILE_ROWS" envDefault:"50000"`
}

// Local dataset cache settings
type CacheConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"adpulse-cache.db"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
