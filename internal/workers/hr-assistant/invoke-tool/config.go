// internal/workers/hr-assistant/invoke-tool/config.go
package invoketool

import "time"

type Config struct {
	// Endpoint of the MCP tool server, e.g. http://127.0.0.1:8050/mcp.
	Endpoint string
	// Transport is "streamable" or "sse".
	Transport string
	// Timeout bounds a whole job; CallTimeout bounds each external call.
	Timeout     time.Duration
	CallTimeout time.Duration

	DefaultLeaveBalance int
	DefaultTotalLeaves  int
}

func LoadConfig() *Config {
	return &Config{
		Endpoint:            "http://127.0.0.1:8050/mcp",
		Transport:           TransportStreamable,
		Timeout:             120 * time.Second,
		CallTimeout:         60 * time.Second,
		DefaultLeaveBalance: 10,
		DefaultTotalLeaves:  100,
	}
}
