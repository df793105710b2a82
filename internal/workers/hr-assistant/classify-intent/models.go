// internal/workers/hr-assistant/classify-intent/models.go
package classifyintent

import "hr-assistant/internal/models"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Intent models.IntentLabel          `json:"intent"`
	Source models.ClassificationSource `json:"source"`
	Score  float64                     `json:"score"`
}

// IntentExamples are the canonical phrasings embedded once per process.
var IntentExamples = map[models.IntentLabel][]string{
	models.IntentAddUser: {
		"add a new employee",
		"create user record",
		"register a new user",
		"add john to the database",
	},
	models.IntentUpdateLeaveBalance: {
		"update leave for john",
		"reduce leaves",
		"change leave balance",
		"update remaining leaves",
	},
	models.IntentDeleteUser: {
		"remove employee",
		"delete user john",
		"remove record",
		"terminate employee",
	},
	models.IntentListUsers: {
		"show all users",
		"list employees",
		"display user list",
		"get all users",
	},
	models.IntentGetUser: {
		"get details of john",
		"fetch employee info",
		"show user data",
	},
	models.IntentLeaveBalance: {
		"how many leaves left",
		"check my leave balance",
		"remaining leave days",
		"paid leaves",
	},
	models.IntentPolicyQuery: {
		"maternity policy",
		"notice period",
		"holiday list",
		"bonus rules",
		"working hours",
	},
	models.IntentGeneral: {
		"hi",
		"hello",
		"who are you",
		"thank you",
		"good morning",
		"bye",
		"how are you",
		"what can you do",
	},
}
