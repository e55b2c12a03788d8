// internal/workers/catalog/compare-technologies/config.go
package comparetechnologies

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
