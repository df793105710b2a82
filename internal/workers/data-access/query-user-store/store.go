// internal/workers/data-access/query-user-store/store.go
package queryuserstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"hr-assistant/internal/models"
	"hr-assistant/internal/workers/data-access/query-user-store/queries"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var (
	ErrUserNotFound         = errors.New("USER_NOT_FOUND")
	ErrDuplicateUser        = errors.New("DUPLICATE_USER")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrInvalidUserRef       = errors.New("INVALID_USER_REFERENCE")
)

// Store is the Postgres-backed HR user store.
type Store struct {
	db    *sql.DB
	stmts *queries.Statements
}

func NewStore(db *sql.DB, table string) (*Store, error) {
	if table == "" {
		table = DefaultUsersTable
	}
	stmts, err := queries.ForTable(table)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, stmts: stmts}, nil
}

// GetUser looks the caller up by id, then by username.
func (s *Store) GetUser(ctx context.Context, id string) (*models.UserRecord, error) {
	if id == "" {
		return nil, ErrInvalidUserRef
	}
	return s.queryOne(ctx, s.stmts.GetByIDOrName, id)
}

func (s *Store) FindUser(ctx context.Context, ref UserRef) (*models.UserRecord, error) {
	switch {
	case ref.ID != "":
		return s.queryOne(ctx, s.stmts.GetByID, ref.ID)
	case ref.Username != "":
		return s.queryOne(ctx, s.stmts.GetByUsername, ref.Username)
	default:
		return nil, ErrInvalidUserRef
	}
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]models.UserRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, s.stmts.List, limit)
	if err != nil {
		return nil, s.wrap(ctx, err)
	}
	defer rows.Close()

	users := make([]models.UserRecord, 0)
	for rows.Next() {
		u, err := queries.ScanUser(rows)
		if err != nil {
			return nil, s.wrap(ctx, err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, err)
	}
	return users, nil
}

func (s *Store) AddUser(ctx context.Context, username string, leaveBalance, totalLeaves int) (*models.UserRecord, error) {
	if username == "" {
		return nil, ErrInvalidUserRef
	}
	u, err := queries.ScanUser(s.db.QueryRowContext(ctx, s.stmts.Insert,
		uuid.NewString(), username, leaveBalance, totalLeaves))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, username)
		}
		return nil, s.wrap(ctx, err)
	}
	return u, nil
}

func (s *Store) UpdateLeaveBalance(ctx context.Context, ref UserRef, leaveBalance int) (*models.UserRecord, error) {
	switch {
	case ref.ID != "":
		return s.queryOne(ctx, s.stmts.UpdateBalanceByID, ref.ID, leaveBalance)
	case ref.Username != "":
		return s.queryOne(ctx, s.stmts.UpdateBalanceByName, ref.Username, leaveBalance)
	default:
		return nil, ErrInvalidUserRef
	}
}

// DeleteUser returns the removed record.
func (s *Store) DeleteUser(ctx context.Context, ref UserRef) (*models.UserRecord, error) {
	switch {
	case ref.ID != "":
		return s.queryOne(ctx, s.stmts.DeleteByID, ref.ID)
	case ref.Username != "":
		return s.queryOne(ctx, s.stmts.DeleteByUsername, ref.Username)
	default:
		return nil, ErrInvalidUserRef
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) queryOne(ctx context.Context, query string, args ...interface{}) (*models.UserRecord, error) {
	u, err := queries.ScanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, s.wrap(ctx, err)
	}
	return u, nil
}

func (s *Store) wrap(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
}
