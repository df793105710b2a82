// internal/workers/data-access/query-user-store/queries/users.go
package queries

import (
	"hr-assistant/internal/models"
)

const UserColumns = "id, username, leave_balance, total_leaves, created_at, updated_at"

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...interface{}) error
}

func ScanUser(s Scanner) (*models.UserRecord, error) {
	var u models.UserRecord
	if err := s.Scan(&u.ID, &u.Name, &u.RemainingLeaves, &u.TotalLeaves, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
