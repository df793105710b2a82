// internal/models/hr.go
package models

import "time"

// IntentLabel is the categorical purpose of a user query.
type IntentLabel string

const (
	IntentAddUser            IntentLabel = "add_user"
	IntentUpdateLeaveBalance IntentLabel = "update_leave_balance"
	IntentDeleteUser         IntentLabel = "delete_user"
	IntentListUsers          IntentLabel = "list_users"
	IntentGetUser            IntentLabel = "get_user"
	IntentLeaveBalance       IntentLabel = "leave_balance"
	IntentPolicyQuery        IntentLabel = "policy_query"
	IntentGeneral            IntentLabel = "general"

	// IntentNone is only reported alongside ModeError for rejected input.
	IntentNone IntentLabel = "none"
)

// IntentLabels is the closed label set in priority order. Classifiers iterate
// it in this order, so earlier labels win ties.
var IntentLabels = []IntentLabel{
	IntentAddUser,
	IntentUpdateLeaveBalance,
	IntentDeleteUser,
	IntentListUsers,
	IntentGetUser,
	IntentLeaveBalance,
	IntentPolicyQuery,
	IntentGeneral,
}

func ParseIntentLabel(s string) (IntentLabel, bool) {
	for _, l := range IntentLabels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func (l IntentLabel) String() string {
	return string(l)
}

type ResponseMode string

const (
	ModeDirect    ResponseMode = "direct"
	ModeDatabase  ResponseMode = "database"
	ModeRetrieval ResponseMode = "retrieval"
	ModeTool      ResponseMode = "tool"
	ModeError     ResponseMode = "error"
)

type ClassificationSource string

const (
	SourceSimilarity ClassificationSource = "similarity"
	SourceGenerative ClassificationSource = "generative"
)

// Resolution is the outcome of intent resolution. Score is the winning cosine
// similarity for SourceSimilarity and zero otherwise.
type Resolution struct {
	Intent IntentLabel          `json:"intent"`
	Source ClassificationSource `json:"source"`
	Score  float64              `json:"score"`
}

type QueryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id,omitempty"`
}

type QueryResponse struct {
	Mode   ResponseMode `json:"mode"`
	Intent IntentLabel  `json:"intent"`
	Answer string       `json:"answer"`
}

// UserRecord is one row of the HR user store.
type UserRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RemainingLeaves int       `json:"remaining_leaves"`
	TotalLeaves     int       `json:"total_leaves"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// PolicyDocument is one snippet returned by the policy index.
type PolicyDocument struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Chunk   int     `json:"chunk,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

const ActionCallTool = "call_tool"

// Tool names accepted in an ActionRequest.
const (
	ToolAddUser            = "add_user"
	ToolUpdateLeaveBalance = "update_leave_balance"
	ToolDeleteUser         = "delete_user"
	ToolListUsers          = "list_users"
	ToolGetUser            = "get_user"
)

var ToolNames = []string{
	ToolAddUser,
	ToolUpdateLeaveBalance,
	ToolDeleteUser,
	ToolListUsers,
	ToolGetUser,
}

func IsToolName(name string) bool {
	for _, t := range ToolNames {
		if t == name {
			return true
		}
	}
	return false
}

// IsMutatingTool reports whether the tool changes the user store.
func IsMutatingTool(name string) bool {
	switch name {
	case ToolAddUser, ToolUpdateLeaveBalance, ToolDeleteUser:
		return true
	}
	return false
}

// ActionRequest is the canonical tool-call record.
type ActionRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}
