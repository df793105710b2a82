// internal/workers/data-access/query-user-store/models.go
package queryuserstore

import "hr-assistant/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	User  *models.UserRecord `json:"user"`
	Found bool               `json:"found"`
}

// UserRef selects a user by id or, when ID is empty, by username.
type UserRef struct {
	ID       string
	Username string
}

func (r UserRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Username
}
