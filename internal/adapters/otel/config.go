package otel

import "github.com/kelseyhightower/envconfig"

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string `envconfig:"ABTEST_OTEL_ENDPOINT"`
	Enabled  bool   `envconfig:"ABTEST_OTEL_ENABLED" default:"false"`
	Insecure bool   `envconfig:"ABTEST_OTEL_INSECURE" default:"false"`
}

// LoadConfig loads OTEL configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
