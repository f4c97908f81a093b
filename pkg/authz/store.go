package authz

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// Store handles role assignment persistence.
type Store interface {
	// Grant records an assignment, reactivating a previously revoked
	// one for the same (account, role, conference) triple.
	Grant(ctx context.Context, assignment *RoleAssignment) error

	// Revoke deactivates an assignment. It reports whether an active
	// assignment existed.
	Revoke(ctx context.Context, accountID string, role Role, conferenceID string) (bool, error)

	// ListActive returns the active assignments for an account.
	ListActive(ctx context.Context, accountID string) ([]RoleAssignment, error)
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates the store and ensures its schema exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	s := &PostgresStore{db: db}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure role_assignments table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS role_assignments (
		id VARCHAR(36) PRIMARY KEY,
		account_id VARCHAR(36) NOT NULL,
		role VARCHAR(20) NOT NULL,
		conference_id VARCHAR(36) NOT NULL DEFAULT '',
		granted_by VARCHAR(36),
		granted_at TIMESTAMP WITH TIME ZONE NOT NULL,
		revoked_at TIMESTAMP WITH TIME ZONE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		UNIQUE (account_id, role, conference_id)
	);

	CREATE INDEX IF NOT EXISTS idx_role_assignments_account ON role_assignments(account_id) WHERE active;
	`

	_, err := s.db.Exec(query)
	return err
}

// Grant inserts the assignment, or reactivates the matching revoked row.
func (s *PostgresStore) Grant(ctx context.Context, assignment *RoleAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	if assignment.GrantedAt.IsZero() {
		assignment.GrantedAt = time.Now().UTC()
	}
	assignment.Active = true
	assignment.RevokedAt = nil

	query := `
		INSERT INTO role_assignments (id, account_id, role, conference_id, granted_by, granted_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (account_id, role, conference_id)
		DO UPDATE SET active = TRUE, revoked_at = NULL,
		              granted_by = EXCLUDED.granted_by, granted_at = EXCLUDED.granted_at
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		assignment.ID, assignment.AccountID, assignment.Role,
		assignment.ConferenceID, assignment.GrantedBy, assignment.GrantedAt,
	).Scan(&assignment.ID)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to grant role: %w", err))
	}
	return nil
}

// Revoke deactivates a matching active assignment.
func (s *PostgresStore) Revoke(ctx context.Context, accountID string, role Role, conferenceID string) (bool, error) {
	query := `
		UPDATE role_assignments
		SET active = FALSE, revoked_at = NOW()
		WHERE account_id = $1 AND role = $2 AND conference_id = $3 AND active
	`

	result, err := s.db.ExecContext(ctx, query, accountID, role, conferenceID)
	if err != nil {
		return false, errdefs.Storage(fmt.Errorf("failed to revoke role: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errdefs.Storage(err)
	}
	return affected > 0, nil
}

// ListActive returns the active assignments for an account, oldest first.
func (s *PostgresStore) ListActive(ctx context.Context, accountID string) ([]RoleAssignment, error) {
	query := `
		SELECT id, account_id, role, conference_id, granted_by, granted_at, revoked_at, active
		FROM role_assignments
		WHERE account_id = $1 AND active
		ORDER BY granted_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to list role assignments: %w", err))
	}
	defer rows.Close()

	var assignments []RoleAssignment
	for rows.Next() {
		var a RoleAssignment
		var grantedBy sql.NullString
		var revokedAt sql.NullTime

		err := rows.Scan(&a.ID, &a.AccountID, &a.Role, &a.ConferenceID,
			&grantedBy, &a.GrantedAt, &revokedAt, &a.Active)
		if err != nil {
			return nil, errdefs.Storage(fmt.Errorf("failed to scan role assignment: %w", err))
		}

		a.GrantedBy = grantedBy.String
		if revokedAt.Valid {
			t := revokedAt.Time
			a.RevokedAt = &t
		}

		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errdefs.Storage(err)
	}
	return assignments, nil
}
