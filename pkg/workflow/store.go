package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// Store handles workflow persistence. Multi-entity writes (assignment
// creation, review submission, decision recording) are single
// transactions: a review plus its assignment-status update plus the
// cascading paper-status update commit as one unit or not at all.
type Store interface {
	CreatePaper(ctx context.Context, paper *Paper) error
	GetPaper(ctx context.Context, id string) (*Paper, error)
	ListPapersByOwner(ctx context.Context, ownerID string) ([]*Paper, error)
	UpdatePaperContent(ctx context.Context, paper *Paper) error
	SetPaperStatus(ctx context.Context, paperID string, from, to PaperStatus) error
	DeletePaper(ctx context.Context, paperID string) error

	// CreateAssignment inserts the assignment and, when the paper is
	// still Submitted, moves it to UnderReview in the same transaction.
	CreateAssignment(ctx context.Context, assignment *Assignment) error
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	ListAssignmentsByPaper(ctx context.Context, paperID string) ([]*Assignment, error)
	ListAssignmentsByReviewer(ctx context.Context, reviewerID string) ([]*Assignment, error)
	SetAssignmentStatus(ctx context.Context, id string, from, to AssignmentStatus) error
	HasActiveAssignment(ctx context.Context, paperID, reviewerID string) (bool, error)

	// SubmitReview upserts the review, marks its assignment Reviewed,
	// and moves the paper to Reviewed once every non-declined
	// assignment is Reviewed, all in one transaction.
	SubmitReview(ctx context.Context, review *Review) error
	GetReviewByAssignment(ctx context.Context, assignmentID string) (*Review, error)
	ListReviewsByPaper(ctx context.Context, paperID string) ([]*Review, error)
	ListReviewsByReviewer(ctx context.Context, reviewerID string) ([]*Review, error)
	CountReviewsByPaper(ctx context.Context, paperID string) (int, error)

	// RecordDecision inserts the decision and sets the paper's final
	// status in one transaction. A second decision for the same paper
	// fails with AlreadyDecided.
	RecordDecision(ctx context.Context, decision *Decision) error
	GetDecision(ctx context.Context, paperID string) (*Decision, error)

	DeclareConflict(ctx context.Context, conflict *Conflict) error
	HasConflict(ctx context.Context, paperID, reviewerID string) (bool, error)
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
	if err := s.ensureTables(); err != nil {
		return nil, fmt.Errorf("failed to ensure workflow tables: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS papers (
		id VARCHAR(36) PRIMARY KEY,
		conference_id VARCHAR(36) NOT NULL,
		owner_id VARCHAR(36) NOT NULL,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL,
		file_ref TEXT,
		status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_papers_owner ON papers(owner_id);
	CREATE INDEX IF NOT EXISTS idx_papers_conference ON papers(conference_id);

	CREATE TABLE IF NOT EXISTS assignments (
		id VARCHAR(36) PRIMARY KEY,
		paper_id VARCHAR(36) NOT NULL REFERENCES papers(id),
		reviewer_id VARCHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL,
		deadline TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_reviewer ON assignments(reviewer_id);

	-- One live assignment per (paper, reviewer); a declined assignment
	-- does not block assigning the reviewer again.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_active
		ON assignments(paper_id, reviewer_id) WHERE status <> 'declined';

	CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR(36) PRIMARY KEY,
		assignment_id VARCHAR(36) NOT NULL UNIQUE REFERENCES assignments(id),
		paper_id VARCHAR(36) NOT NULL REFERENCES papers(id),
		reviewer_id VARCHAR(36) NOT NULL,
		score INTEGER NOT NULL,
		comment TEXT,
		confidential_comment TEXT,
		submitted_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_paper ON reviews(paper_id);

	CREATE TABLE IF NOT EXISTS decisions (
		id VARCHAR(36) PRIMARY KEY,
		paper_id VARCHAR(36) NOT NULL UNIQUE REFERENCES papers(id),
		chair_id VARCHAR(36) NOT NULL,
		result VARCHAR(20) NOT NULL,
		comment TEXT,
		decided_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conflicts (
		id VARCHAR(36) PRIMARY KEY,
		paper_id VARCHAR(36) NOT NULL REFERENCES papers(id),
		reviewer_id VARCHAR(36) NOT NULL,
		declared_by VARCHAR(36) NOT NULL,
		reason TEXT,
		declared_at TIMESTAMP WITH TIME ZONE NOT NULL,
		UNIQUE (paper_id, reviewer_id)
	);
	`

	_, err := s.db.Exec(query)
	return err
}

// CreatePaper inserts a new paper in Submitted status.
func (s *PostgresStore) CreatePaper(ctx context.Context, paper *Paper) error {
	if paper.ID == "" {
		paper.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	paper.CreatedAt = now
	paper.UpdatedAt = now
	paper.Status = PaperSubmitted

	query := `
		INSERT INTO papers (id, conference_id, owner_id, title, abstract, file_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		paper.ID, paper.ConferenceID, paper.OwnerID, paper.Title,
		paper.Abstract, paper.FileRef, paper.Status, paper.CreatedAt, paper.UpdatedAt)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to create paper: %w", err))
	}
	return nil
}

const paperColumns = `id, conference_id, owner_id, title, abstract, file_ref, status, created_at, updated_at`

func scanPaper(row interface{ Scan(...interface{}) error }) (*Paper, error) {
	var p Paper
	var fileRef sql.NullString
	err := row.Scan(&p.ID, &p.ConferenceID, &p.OwnerID, &p.Title, &p.Abstract,
		&fileRef, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.NotFound("paper not found")
	}
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to scan paper: %w", err))
	}
	p.FileRef = fileRef.String
	return &p, nil
}

// GetPaper retrieves a paper by id.
func (s *PostgresStore) GetPaper(ctx context.Context, id string) (*Paper, error) {
	query := fmt.Sprintf(`SELECT %s FROM papers WHERE id = $1`, paperColumns)
	return scanPaper(s.db.QueryRowContext(ctx, query, id))
}

// ListPapersByOwner returns an author's papers, newest first.
func (s *PostgresStore) ListPapersByOwner(ctx context.Context, ownerID string) ([]*Paper, error) {
	query := fmt.Sprintf(`SELECT %s FROM papers WHERE owner_id = $1 ORDER BY created_at DESC`, paperColumns)

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to list papers: %w", err))
	}
	defer rows.Close()

	var papers []*Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.Storage(err)
	}
	return papers, nil
}

// UpdatePaperContent updates the mutable fields of a paper.
func (s *PostgresStore) UpdatePaperContent(ctx context.Context, paper *Paper) error {
	paper.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE papers SET title = $1, abstract = $2, file_ref = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		paper.Title, paper.Abstract, paper.FileRef, paper.UpdatedAt, paper.ID)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to update paper: %w", err))
	}
	return requireAffected(result, "paper not found")
}

// SetPaperStatus moves a paper from one status to another. The from
// status guards against concurrent transitions.
func (s *PostgresStore) SetPaperStatus(ctx context.Context, paperID string, from, to PaperStatus) error {
	query := `UPDATE papers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := s.db.ExecContext(ctx, query, to, time.Now().UTC(), paperID, from)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to set paper status: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errdefs.Storage(err)
	}
	if affected == 0 {
		return errdefs.InvalidTransition("paper is no longer in status %s", from)
	}
	return nil
}

// DeletePaper removes a paper record.
func (s *PostgresStore) DeletePaper(ctx context.Context, paperID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, paperID)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to delete paper: %w", err))
	}
	return requireAffected(result, "paper not found")
}

// CreateAssignment inserts the assignment and moves a Submitted paper
// to UnderReview in the same transaction.
func (s *PostgresStore) CreateAssignment(ctx context.Context, assignment *Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	assignment.Status = AssignmentAssigned

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assignments (id, paper_id, reviewer_id, status, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, assignment.ID, assignment.PaperID, assignment.ReviewerID,
		assignment.Status, assignment.Deadline, assignment.CreatedAt, assignment.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errdefs.AlreadyExists("reviewer is already assigned to this paper")
		}
		return errdefs.Storage(fmt.Errorf("failed to create assignment: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE papers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
	`, PaperUnderReview, now, assignment.PaperID, PaperSubmitted)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to advance paper status: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return errdefs.Storage(fmt.Errorf("failed to commit assignment: %w", err))
	}
	return nil
}

const assignmentColumns = `id, paper_id, reviewer_id, status, deadline, created_at, updated_at`

func scanAssignment(row interface{ Scan(...interface{}) error }) (*Assignment, error) {
	var a Assignment
	var deadline sql.NullTime
	err := row.Scan(&a.ID, &a.PaperID, &a.ReviewerID, &a.Status, &deadline, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.NotFound("assignment not found")
	}
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to scan assignment: %w", err))
	}
	if deadline.Valid {
		t := deadline.Time
		a.Deadline = &t
	}
	return &a, nil
}

// GetAssignment retrieves an assignment by id.
func (s *PostgresStore) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1`, assignmentColumns)
	return scanAssignment(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) listAssignments(ctx context.Context, column, value string) ([]*Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE %s = $1 ORDER BY created_at ASC`, assignmentColumns, column)

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to list assignments: %w", err))
	}
	defer rows.Close()

	var assignments []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.Storage(err)
	}
	return assignments, nil
}

// ListAssignmentsByPaper returns a paper's assignments, oldest first.
func (s *PostgresStore) ListAssignmentsByPaper(ctx context.Context, paperID string) ([]*Assignment, error) {
	return s.listAssignments(ctx, "paper_id", paperID)
}

// ListAssignmentsByReviewer returns a reviewer's assignments, oldest first.
func (s *PostgresStore) ListAssignmentsByReviewer(ctx context.Context, reviewerID string) ([]*Assignment, error) {
	return s.listAssignments(ctx, "reviewer_id", reviewerID)
}

// SetAssignmentStatus moves an assignment between statuses, guarded by
// the expected current status.
func (s *PostgresStore) SetAssignmentStatus(ctx context.Context, id string, from, to AssignmentStatus) error {
	query := `UPDATE assignments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := s.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to set assignment status: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errdefs.Storage(err)
	}
	if affected == 0 {
		return errdefs.InvalidTransition("assignment is no longer in status %s", from)
	}
	return nil
}

// HasActiveAssignment reports whether a non-declined assignment links
// the reviewer to the paper.
func (s *PostgresStore) HasActiveAssignment(ctx context.Context, paperID, reviewerID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM assignments
			WHERE paper_id = $1 AND reviewer_id = $2 AND status <> $3
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, paperID, reviewerID, AssignmentDeclined).Scan(&exists); err != nil {
		return false, errdefs.Storage(fmt.Errorf("failed to check assignment: %w", err))
	}
	return exists, nil
}

// SubmitReview upserts the review for its assignment, marks the
// assignment Reviewed, and cascades the paper to Reviewed once every
// non-declined assignment is Reviewed. One transaction.
func (s *PostgresStore) SubmitReview(ctx context.Context, review *Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.SubmittedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (id, assignment_id, paper_id, reviewer_id, score, comment, confidential_comment, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (assignment_id)
		DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment,
		              confidential_comment = EXCLUDED.confidential_comment,
		              submitted_at = EXCLUDED.submitted_at
		RETURNING id
	`, review.ID, review.AssignmentID, review.PaperID, review.ReviewerID,
		review.Score, review.Comment, review.ConfidentialComment, review.SubmittedAt).Scan(&review.ID)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to upsert review: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments SET status = $1, updated_at = $2 WHERE id = $3
	`, AssignmentReviewed, review.SubmittedAt, review.AssignmentID)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to mark assignment reviewed: %w", err))
	}

	var pending int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM assignments
		WHERE paper_id = $1 AND status NOT IN ($2, $3)
	`, review.PaperID, AssignmentReviewed, AssignmentDeclined).Scan(&pending)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to count pending assignments: %w", err))
	}

	if pending == 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE papers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
		`, PaperReviewed, review.SubmittedAt, review.PaperID, PaperUnderReview)
		if err != nil {
			return errdefs.Storage(fmt.Errorf("failed to advance paper status: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errdefs.Storage(fmt.Errorf("failed to commit review: %w", err))
	}
	return nil
}

const reviewColumns = `id, assignment_id, paper_id, reviewer_id, score, comment, confidential_comment, submitted_at`

func scanReview(row interface{ Scan(...interface{}) error }) (*Review, error) {
	var r Review
	var comment, confidential sql.NullString
	err := row.Scan(&r.ID, &r.AssignmentID, &r.PaperID, &r.ReviewerID,
		&r.Score, &comment, &confidential, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.NotFound("review not found")
	}
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to scan review: %w", err))
	}
	r.Comment = comment.String
	r.ConfidentialComment = confidential.String
	return &r, nil
}

// GetReviewByAssignment retrieves the review for an assignment.
func (s *PostgresStore) GetReviewByAssignment(ctx context.Context, assignmentID string) (*Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE assignment_id = $1`, reviewColumns)
	return scanReview(s.db.QueryRowContext(ctx, query, assignmentID))
}

func (s *PostgresStore) listReviews(ctx context.Context, column, value string) ([]*Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE %s = $1 ORDER BY submitted_at ASC`, reviewColumns, column)

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to list reviews: %w", err))
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errdefs.Storage(err)
	}
	return reviews, nil
}

// ListReviewsByPaper returns a paper's reviews, oldest first.
func (s *PostgresStore) ListReviewsByPaper(ctx context.Context, paperID string) ([]*Review, error) {
	return s.listReviews(ctx, "paper_id", paperID)
}

// ListReviewsByReviewer returns a reviewer's reviews, oldest first.
func (s *PostgresStore) ListReviewsByReviewer(ctx context.Context, reviewerID string) ([]*Review, error) {
	return s.listReviews(ctx, "reviewer_id", reviewerID)
}

// CountReviewsByPaper counts the reviews attached to a paper.
func (s *PostgresStore) CountReviewsByPaper(ctx context.Context, paperID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE paper_id = $1`, paperID).Scan(&count)
	if err != nil {
		return 0, errdefs.Storage(fmt.Errorf("failed to count reviews: %w", err))
	}
	return count, nil
}

// RecordDecision inserts the decision and sets the paper's final
// status in one transaction.
func (s *PostgresStore) RecordDecision(ctx context.Context, decision *Decision) error {
	if decision.ID == "" {
		decision.ID = uuid.New().String()
	}
	decision.DecidedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (id, paper_id, chair_id, result, comment, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, decision.ID, decision.PaperID, decision.ChairID, decision.Result, decision.Comment, decision.DecidedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errdefs.AlreadyDecided("paper already has a decision")
		}
		return errdefs.Storage(fmt.Errorf("failed to record decision: %w", err))
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE papers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
	`, decision.Result.PaperStatus(), decision.DecidedAt, decision.PaperID, PaperReviewed)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to set paper status: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errdefs.Storage(err)
	}
	if affected == 0 {
		return errdefs.InvalidTransition("paper is not in reviewed status")
	}

	if err := tx.Commit(); err != nil {
		return errdefs.Storage(fmt.Errorf("failed to commit decision: %w", err))
	}
	return nil
}

// GetDecision retrieves the decision for a paper.
func (s *PostgresStore) GetDecision(ctx context.Context, paperID string) (*Decision, error) {
	query := `SELECT id, paper_id, chair_id, result, comment, decided_at FROM decisions WHERE paper_id = $1`

	var d Decision
	var comment sql.NullString
	err := s.db.QueryRowContext(ctx, query, paperID).Scan(
		&d.ID, &d.PaperID, &d.ChairID, &d.Result, &comment, &d.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errdefs.NotFound("decision not found")
	}
	if err != nil {
		return nil, errdefs.Storage(fmt.Errorf("failed to scan decision: %w", err))
	}
	d.Comment = comment.String
	return &d, nil
}

// DeclareConflict records a conflict of interest. Declaring the same
// conflict twice is a no-op.
func (s *PostgresStore) DeclareConflict(ctx context.Context, conflict *Conflict) error {
	if conflict.ID == "" {
		conflict.ID = uuid.New().String()
	}
	conflict.DeclaredAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conflicts (id, paper_id, reviewer_id, declared_by, reason, declared_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (paper_id, reviewer_id) DO NOTHING
	`, conflict.ID, conflict.PaperID, conflict.ReviewerID, conflict.DeclaredBy, conflict.Reason, conflict.DeclaredAt)
	if err != nil {
		return errdefs.Storage(fmt.Errorf("failed to declare conflict: %w", err))
	}
	return nil
}

// HasConflict reports whether a conflict is declared between the
// reviewer and the paper.
func (s *PostgresStore) HasConflict(ctx context.Context, paperID, reviewerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM conflicts WHERE paper_id = $1 AND reviewer_id = $2)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, paperID, reviewerID).Scan(&exists); err != nil {
		return false, errdefs.Storage(fmt.Errorf("failed to check conflict: %w", err))
	}
	return exists, nil
}

func requireAffected(result sql.Result, msg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errdefs.Storage(err)
	}
	if affected == 0 {
		return errdefs.NotFound(msg)
	}
	return nil
}
