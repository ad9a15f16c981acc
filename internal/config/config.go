package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Triage struct {
		ModelPath            string `yaml:"model_path"`
		QueueCapacity        int    `yaml:"queue_capacity"`
		MaxRetries           int    `yaml:"max_retries"`
		RetryBackoffMs       int64  `yaml:"retry_backoff_ms"`
		ShutdownGraceSeconds int64  `yaml:"shutdown_grace_seconds"`
		SweepSchedule        string `yaml:"sweep_schedule"`
		SweepMinAgeSeconds   int64  `yaml:"sweep_min_age_seconds"`
		SweepBatch           int    `yaml:"sweep_batch"`
	} `yaml:"triage"`
	RateLimit struct {
		Requests      int   `yaml:"requests"`
		WindowSeconds int64 `yaml:"window_seconds"`
	} `yaml:"rate_limit"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int64  `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
}

// LoadConfig reads configuration from the specified YAML file and fills in
// defaults for omitted fields.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Triage.ModelPath == "" {
		c.Triage.ModelPath = "model/modelo_urgencia.json"
	}
	if c.Triage.QueueCapacity <= 0 {
		c.Triage.QueueCapacity = 256
	}
	if c.Triage.MaxRetries <= 0 {
		c.Triage.MaxRetries = 2
	}
	if c.Triage.RetryBackoffMs <= 0 {
		c.Triage.RetryBackoffMs = 200
	}
	if c.Triage.ShutdownGraceSeconds <= 0 {
		c.Triage.ShutdownGraceSeconds = 10
	}
	if c.Triage.SweepSchedule == "" {
		c.Triage.SweepSchedule = "@every 5m"
	}
	if c.Triage.SweepMinAgeSeconds <= 0 {
		c.Triage.SweepMinAgeSeconds = 60
	}
	if c.Triage.SweepBatch <= 0 {
		c.Triage.SweepBatch = 100
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 5
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}
}
