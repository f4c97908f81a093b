package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// Store handles account persistence. Every lookup is scoped to
// non-deleted accounts.
type Store interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateSecurityData(ctx context.Context, id string, questions []SecurityQuestion) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*Account, error)
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
		return nil, fmt.Errorf("failed to ensure accounts table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(20) NOT NULL,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(100) NOT NULL,
		password_hash TEXT NOT NULL,
		security_questions JSONB,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
	`

	_, err := s.db.Exec(query)
	return err
}

const accountColumns = `id, username, email, full_name, password_hash, security_questions, deleted, created_at, updated_at`

// Create inserts a new account. Uniqueness violations surface as
// AlreadyExists naming the offending field.
func (s *PostgresStore) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	questionsJSON, err := json.Marshal(account.SecurityQuestions)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to marshal security questions: %w", err))
	}

	query := `
		INSERT INTO accounts (id, username, email, full_name, password_hash, security_questions, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
	`

	_, err = s.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.FullName,
		account.PasswordHash, questionsJSON, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// translateUniqueViolation maps a PostgreSQL unique violation to a
// typed AlreadyExists error naming the field.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "email") {
			return errdefs.AlreadyExists("email already registered")
		}
		return errdefs.AlreadyExists("username already taken")
	}
	return errdefs.Storage(fmt.Errorf("failed to create account: %w", err))
}

func (s *PostgresStore) findBy(ctx context.Context, column, value string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s = $1 AND NOT deleted`, accountColumns, column)
	return s.scanAccount(s.db.QueryRowContext(ctx, query, value))
}

// FindByID retrieves a non-deleted account by id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	return s.findBy(ctx, "id", id)
}

// FindByUsername retrieves a non-deleted account by its exact username.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return s.findBy(ctx, "username", username)
}

// FindByEmail retrieves a non-deleted account by email.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findBy(ctx, "email", email)
}

func (s *PostgresStore) scanAccount(row *sql.Row) (*Account, error) {
	var account Account
	var questionsJSON []byte

	err := row.Scan(
		&account.ID, &account.Username, &account.Email, &account.FullName,
		&account.PasswordHash, &questionsJSON, &account.Deleted,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.NotFound("account not found")
	}
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to scan account: %w", err))
	}

	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &account.SecurityQuestions); err != nil {
			return nil, errdefs.Storage(fmt.Errorf("failed to unmarshal security questions: %w", err))
		}
	}
	return &account, nil
}

func (s *PostgresStore) existsBy(ctx context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM accounts WHERE %s = $1 AND NOT deleted)`, column)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, errdefs.Storage(fmt.Errorf("failed to check account existence: %w", err))
	}
	return exists, nil
}

// ExistsByUsername reports whether a non-deleted account holds the username.
func (s *PostgresStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.existsBy(ctx, "username", username)
}

// ExistsByEmail reports whether a non-deleted account holds the email.
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.existsBy(ctx, "email", email)
}

// UpdatePasswordHash replaces the stored password hash.
func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return s.update(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3 AND NOT deleted`,
		hash, time.Now().UTC(), id)
}

// UpdateSecurityData replaces the stored security question set.
func (s *PostgresStore) UpdateSecurityData(ctx context.Context, id string, questions []SecurityQuestion) error {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to marshal security questions: %w", err))
	}
	return s.update(ctx,
		`UPDATE accounts SET security_questions = $1, updated_at = $2 WHERE id = $3 AND NOT deleted`,
		questionsJSON, time.Now().UTC(), id)
}

// SoftDelete marks the account deleted, hiding it from every lookup.
func (s *PostgresStore) SoftDelete(ctx context.Context, id string) error {
	return s.update(ctx,
		`UPDATE accounts SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND NOT deleted`,
		time.Now().UTC(), id)
}

func (s *PostgresStore) update(ctx context.Context, query string, args ...interface{}) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to update account: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errdefs.Storage(err)
	}
	if affected == 0 {
		return errdefs.NotFound("account not found")
	}
	return nil
}

// List returns non-deleted accounts, optionally narrowed to accounts
// holding an active role, ordered by creation time.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * perPage
	}

	var query string
	var args []interface{}

	if filter.Role != "" {
		query = `
			SELECT DISTINCT a.id, a.username, a.email, a.full_name, a.password_hash, a.security_questions, a.deleted, a.created_at, a.updated_at
			FROM accounts a
			JOIN role_assignments ra ON ra.account_id = a.id AND ra.active AND ra.role = $1
			WHERE NOT a.deleted
			ORDER BY a.created_at ASC
			LIMIT $2 OFFSET $3
		`
		args = []interface{}{filter.Role, perPage, offset}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM accounts
			WHERE NOT deleted
			ORDER BY created_at ASC
			LIMIT $1 OFFSET $2
		`, accountColumns)
		args = []interface{}{perPage, offset}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to list accounts: %w", err))
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var account Account
		var questionsJSON []byte

		err := rows.Scan(
			&account.ID, &account.Username, &account.Email, &account.FullName,
			&account.PasswordHash, &questionsJSON, &account.Deleted,
			&account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, errdefs.Storage(fmt.Errorf("failed to scan account: %w", err))
		}
		if len(questionsJSON) > 0 {
			if err := json.Unmarshal(questionsJSON, &account.SecurityQuestions); err != nil {
				return nil, errdefs.Storage(fmt.Errorf("failed to unmarshal security questions: %w", err))
			}
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, errdefs.Storage(err)
	}
	return accounts, nil
}
