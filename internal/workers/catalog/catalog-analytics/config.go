// internal/workers/catalog/catalog-analytics/config.go
package cataloganalytics

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
