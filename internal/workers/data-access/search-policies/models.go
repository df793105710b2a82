// internal/workers/data-access/search-policies/models.go
package searchpolicies

import "hr-assistant/internal/models"

type Input struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type Output struct {
	Documents []models.PolicyDocument `json:"documents"`
	Count     int                     `json:"count"`
}
