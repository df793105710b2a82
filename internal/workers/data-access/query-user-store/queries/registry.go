// internal/workers/data-access/query-user-store/queries/registry.go
package queries

import (
	"fmt"

	"hr-assistant/internal/common/database"
)

var ErrInvalidTable = database.ErrInvalidIdentifier

// Statements holds the user-store SQL for one table.
type Statements struct {
	GetByIDOrName       string
	GetByID             string
	GetByUsername       string
	List                string
	Insert              string
	UpdateBalanceByID   string
	UpdateBalanceByName string
	DeleteByID          string
	DeleteByUsername    string
}

// ForTable renders the statements for table. The name is interpolated, so
// only plain or schema-qualified identifiers are accepted.
func ForTable(table string) (*Statements, error) {
	if !database.ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	return &Statements{
		GetByIDOrName: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 OR username = $1 ORDER BY (id = $1) DESC LIMIT 1`, UserColumns, table),
		GetByID:       fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, UserColumns, table),
		GetByUsername: fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, UserColumns, table),
		List:          fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, username LIMIT $1`, UserColumns, table),
		Insert: fmt.Sprintf(`INSERT INTO %s (id, username, leave_balance, total_leaves) VALUES ($1, $2, $3, $4) RETURNING %s`,
			table, UserColumns),
		UpdateBalanceByID: fmt.Sprintf(`UPDATE %s SET leave_balance = $2, updated_at = NOW() WHERE id = $1 RETURNING %s`,
			table, UserColumns),
		UpdateBalanceByName: fmt.Sprintf(`UPDATE %s SET leave_balance = $2, updated_at = NOW() WHERE username = $1 RETURNING %s`,
			table, UserColumns),
		DeleteByID:       fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, table, UserColumns),
		DeleteByUsername: fmt.Sprintf(`DELETE FROM %s WHERE username = $1 RETURNING %s`, table, UserColumns),
	}, nil
}
