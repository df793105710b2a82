// internal/workers/hr-assistant/handle-query/models.go
package handlequery

import "hr-assistant/internal/models"

type Input struct {
	Query  string `json:"query"`
	UserID string `json:"userId,omitempty"`
}

type Output = models.QueryResponse
