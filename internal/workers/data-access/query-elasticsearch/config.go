// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import "time"

type Config struct {
	Timeout     time.Duration
	IndexName   string
	DefaultSize int
	Breaker     BreakerConfig
}

// BreakerConfig tunes the circuit breaker in front of Elasticsearch.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		IndexName:   "technologies",
		DefaultSize: 20,
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}
