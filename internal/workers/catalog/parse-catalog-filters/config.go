// internal/workers/catalog/parse-catalog-filters/config.go
package parsecatalogfilters

import "time"

type Config struct {
	Timeout         time.Duration
	MaxSearchLength int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		MaxSearchLength: 200,
	}
}
