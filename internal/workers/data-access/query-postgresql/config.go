// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import "time"

// Config bounds each catalog query. Queries slower than SlowQueryThreshold
// are logged at warn level; zero disables the warning.
type Config struct {
	Timeout            time.Duration
	SlowQueryThreshold time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            10 * time.Second,
		SlowQueryThreshold: 500 * time.Millisecond,
	}
}
