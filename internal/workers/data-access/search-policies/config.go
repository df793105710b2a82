// internal/workers/data-access/search-policies/config.go
package searchpolicies

import "time"

const (
	DefaultK     = 4
	MaxK         = 50
	DefaultIndex = "hr_policies"
)

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Index:   DefaultIndex,
	}
}
