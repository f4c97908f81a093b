package workflow

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

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS papers").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestNewPostgresStoreRequiresDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestCreatePaperStartsSubmitted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO papers").
		WithArgs(sqlmock.AnyArg(), "conf-1", "alice", "Title", "Abstract", "",
			"submitted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	paper := &Paper{
		ConferenceID: "conf-1",
		OwnerID:      "alice",
		Title:        "Title",
		Abstract:     "Abstract",
		Status:       PaperAccepted, // overridden on insert
	}
	require.NoError(t, store.CreatePaper(context.Background(), paper))
	assert.NotEmpty(t, paper.ID)
	assert.Equal(t, PaperSubmitted, paper.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaperStatusGuardsCurrentStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE papers SET status").
		WithArgs("under_review", sqlmock.AnyArg(), "paper-1", "submitted").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetPaperStatus(context.Background(), "paper-1", PaperSubmitted, PaperUnderReview)
	assert.True(t, errdefs.IsInvalidTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignmentTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(sqlmock.AnyArg(), "paper-1", "bob", "assigned",
			nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE papers SET status").
		WithArgs("under_review", sqlmock.AnyArg(), "paper-1", "submitted").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assignment := &Assignment{PaperID: "paper-1", ReviewerID: "bob"}
	require.NoError(t, store.CreateAssignment(context.Background(), assignment))
	assert.Equal(t, AssignmentAssigned, assignment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignmentDuplicateRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "assignments_paper_id_reviewer_id_key"})
	mock.ExpectRollback()

	err := store.CreateAssignment(context.Background(), &Assignment{PaperID: "paper-1", ReviewerID: "bob"})
	assert.True(t, errdefs.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReviewCascadesWhenLastReviewLands(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(sqlmock.AnyArg(), "assign-1", "paper-1", "bob", 7,
			"solid work", "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("review-1"))
	mock.ExpectExec("UPDATE assignments SET status").
		WithArgs("reviewed", sqlmock.AnyArg(), "assign-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("paper-1", "reviewed", "declined").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE papers SET status").
		WithArgs("reviewed", sqlmock.AnyArg(), "paper-1", "under_review").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review := &Review{
		AssignmentID: "assign-1",
		PaperID:      "paper-1",
		ReviewerID:   "bob",
		Score:        7,
		Comment:      "solid work",
	}
	require.NoError(t, store.SubmitReview(context.Background(), review))
	assert.Equal(t, "review-1", review.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitReviewSkipsCascadeWhileReviewsPending(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("review-1"))
	mock.ExpectExec("UPDATE assignments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	review := &Review{AssignmentID: "assign-1", PaperID: "paper-1", ReviewerID: "bob", Score: 5}
	require.NoError(t, store.SubmitReview(context.Background(), review))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDecisionTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO decisions").
		WithArgs(sqlmock.AnyArg(), "paper-1", "chair-1", "accepted", "strong scores", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE papers SET status").
		WithArgs("accepted", sqlmock.AnyArg(), "paper-1", "reviewed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decision := &Decision{
		PaperID: "paper-1",
		ChairID: "chair-1",
		Result:  DecisionAccepted,
		Comment: "strong scores",
	}
	require.NoError(t, store.RecordDecision(context.Background(), decision))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDecisionDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO decisions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "decisions_paper_id_key"})
	mock.ExpectRollback()

	err := store.RecordDecision(context.Background(), &Decision{PaperID: "paper-1", ChairID: "chair-1", Result: DecisionRejected})
	assert.True(t, errdefs.IsAlreadyDecided(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDecisionRequiresReviewedPaper(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO decisions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE papers SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.RecordDecision(context.Background(), &Decision{PaperID: "paper-1", ChairID: "chair-1", Result: DecisionAccepted})
	assert.True(t, errdefs.IsInvalidTransition(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaperNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM papers").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conference_id", "owner_id", "title", "abstract",
			"file_ref", "status", "created_at", "updated_at",
		}))

	_, err := store.GetPaper(context.Background(), "missing")
	assert.True(t, errdefs.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssignmentScansDeadline(t *testing.T) {
	store, mock := newMockStore(t)

	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM assignments").
		WithArgs("assign-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "paper_id", "reviewer_id", "status", "deadline", "created_at", "updated_at",
		}).AddRow("assign-1", "paper-1", "bob", "assigned", deadline, time.Now(), time.Now()))

	assignment, err := store.GetAssignment(context.Background(), "assign-1")
	require.NoError(t, err)
	require.NotNil(t, assignment.Deadline)
	assert.True(t, assignment.Deadline.Equal(deadline))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasConflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("paper-1", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.HasConflict(context.Background(), "paper-1", "bob")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
