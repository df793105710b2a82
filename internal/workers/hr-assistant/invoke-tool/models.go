// internal/workers/hr-assistant/invoke-tool/models.go
package invoketool

import "hr-assistant/internal/models"

type Input struct {
	Query  string             `json:"query"`
	Intent models.IntentLabel `json:"intent"`
}

type Output struct {
	Mode   models.ResponseMode    `json:"mode"`
	Intent models.IntentLabel     `json:"intent"`
	Answer string                 `json:"answer"`
	Tool   string                 `json:"tool,omitempty"`
	Args   map[string]interface{} `json:"args,omitempty"`
}

// Response drops the tool details.
func (o *Output) Response() *models.QueryResponse {
	return &models.QueryResponse{Mode: o.Mode, Intent: o.Intent, Answer: o.Answer}
}
