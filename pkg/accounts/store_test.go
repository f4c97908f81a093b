package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uth-confms/confms/pkg/errdefs"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "full_name", "password_hash",
		"security_questions", "deleted", "created_at", "updated_at",
	})
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "alice01", "alice@x.com", "Alice Liddell",
			"$2a$12$fakehash", []byte(`[{"q":"First pet?","a":"rex"}]`),
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &Account{
		Username:     "alice01",
		Email:        "alice@x.com",
		FullName:     "Alice Liddell",
		PasswordHash: "$2a$12$fakehash",
		SecurityQuestions: []SecurityQuestion{
			{Question: "First pet?", Answer: "rex"},
		},
	}
	require.NoError(t, store.Create(context.Background(), account))

	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTranslatesUniqueViolations(t *testing.T) {
	t.Run("username constraint", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO accounts").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_accounts_username"})

		err := store.Create(context.Background(), &Account{Username: "alice01"})
		assert.True(t, errdefs.IsAlreadyExists(err))
		assert.Contains(t, err.Error(), "username")
	})

	t.Run("email constraint", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO accounts").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_accounts_email"})

		err := store.Create(context.Background(), &Account{Username: "alice02"})
		assert.True(t, errdefs.IsAlreadyExists(err))
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("other errors stay opaque storage failures", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO accounts").
			WillReturnError(&pq.Error{Code: "53300", Message: "too many connections"})

		err := store.Create(context.Background(), &Account{Username: "alice03"})
		assert.True(t, errdefs.IsStorage(err))
		assert.NotContains(t, err.Error(), "too many connections")
	})
}

func TestFindByUsername(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE username = \\$1 AND NOT deleted").
		WithArgs("alice01").
		WillReturnRows(accountRows().AddRow(
			"acct-1", "alice01", "alice@x.com", "Alice Liddell", "$2a$12$hash",
			[]byte(`[{"q":"First pet?","a":"rex"}]`), false, now, now,
		))

	account, err := store.FindByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", account.ID)
	require.Len(t, account.SecurityQuestions, 1)
	assert.Equal(t, "rex", account.SecurityQuestions[0].Answer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id = \\$1 AND NOT deleted").
		WithArgs("missing").
		WillReturnRows(accountRows())

	_, err := store.FindByID(context.Background(), "missing")
	assert.True(t, errdefs.IsNotFound(err))
}

func TestExistsByEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ExistsByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdatePasswordHash(t *testing.T) {
	store, mock := newMockStore(t)

	t.Run("updates existing account", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET password_hash").
			WithArgs("$2a$12$newhash", sqlmock.AnyArg(), "acct-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.UpdatePasswordHash(context.Background(), "acct-1", "$2a$12$newhash"))
	})

	t.Run("missing account yields not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE accounts SET password_hash").
			WithArgs("$2a$12$newhash", sqlmock.AnyArg(), "gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.UpdatePasswordHash(context.Background(), "gone", "$2a$12$newhash")
		assert.True(t, errdefs.IsNotFound(err))
	})
}

func TestSoftDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE accounts SET deleted = TRUE").
		WithArgs(sqlmock.AnyArg(), "acct-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.SoftDelete(context.Background(), "acct-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithRoleFilterJoinsAssignments(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT DISTINCT (.+) JOIN role_assignments").
		WithArgs("reviewer", 10, 10).
		WillReturnRows(accountRows().AddRow(
			"acct-2", "bob01", "bob@x.com", "Bob", "$2a$12$hash", nil, false, now, now,
		))

	accounts, err := store.List(context.Background(), ListFilter{Role: "reviewer", Page: 2, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "bob01", accounts[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
