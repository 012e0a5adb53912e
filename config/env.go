package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Settings holds process-level settings read from the environment.
type Settings struct {
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"fedinstance.db"`
	ConfigPath   string        `env:"CONFIG_PATH" envDefault:"local.ini"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string        `env:"LOG_FORMAT" envDefault:"console"`
	CronInterval time.Duration `env:"CRON_INTERVAL" envDefault:"30m"`
}

// NewSettings parses FEDINSTANCE_* environment variables.
func NewSettings() (*Settings, error) {
	var s Settings
	err := env.ParseWithOptions(&s, env.Options{
		Prefix: "FEDINSTANCE_",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &s, nil
}
