// internal/workers/catalog/browse-technologies/config.go
package browsetechnologies

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
