// internal/workers/hr-assistant/handle-query/config.go
package handlequery

import "time"

type Config struct {
	Timeout        time.Duration
	CallTimeout    time.Duration
	RetrievalK     int
	MaxCharsPerDoc int
	MaxTotalChars  int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        180 * time.Second,
		CallTimeout:    60 * time.Second,
		RetrievalK:     4,
		MaxCharsPerDoc: 1200,
		MaxTotalChars:  6000,
	}
}
