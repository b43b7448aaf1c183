package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the variable holding an optional YAML config file
const PathEnv = "SWAPKIT_CONFIG_PATH"

type Config struct {
	Source SourceConfig `yaml:"source"`
	Swap   SwapConfig   `yaml:"swap"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type SourceConfig struct {
	URL            string        `yaml:"url" env:"SWAPKIT_SOURCE_URL" env-default:"https://interview.switcheo.com/prices.json"`
	FiatSources    bool          `yaml:"fiat_sources" env:"SWAPKIT_FIAT_SOURCES" env-default:"false"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SWAPKIT_REQUEST_TIMEOUT" env-default:"10s"`
	RetryNum       uint64        `yaml:"retry_num" env:"SWAPKIT_RETRY_NUM" env-default:"1"`
	RetryDuration  time.Duration `yaml:"retry_duration" env:"SWAPKIT_RETRY_DURATION" env-default:"5s"`
	MinInterval    time.Duration `yaml:"min_interval" env:"SWAPKIT_MIN_INTERVAL" env-default:"0s"`
	Burst          int           `yaml:"burst" env:"SWAPKIT_BURST" env-default:"1"`
}

type SwapConfig struct {
	CacheTTL           time.Duration `yaml:"cache_ttl" env:"SWAPKIT_CACHE_TTL" env-default:"30s"`
	MaxReferenceAmount float64       `yaml:"max_reference_amount" env:"SWAPKIT_MAX_REFERENCE_AMOUNT" env-default:"500"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"SWAPKIT_ADDR" env-default:":8080"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"SWAPKIT_LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"SWAPKIT_LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads the config file at path, when set, and applies environment overrides and defaults
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return &cfg, nil
}
