// internal/workers/data-access/query-user-store/config.go
package queryuserstore

import "time"

const DefaultUsersTable = "hr_users"

type Config struct {
	Timeout time.Duration
	Table   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Table:   DefaultUsersTable,
	}
}
