// internal/workers/recommendation/rank-by-profile/config.go
package rankbyprofile

import (
	"time"

	"atio-knowledge-base/internal/matching"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		DefaultLimit: matching.DefaultRecommendationLimit,
	}
}
