package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/authz"
	"github.com/uth-confms/confms/pkg/errdefs"
	"github.com/uth-confms/confms/pkg/observability"
)

// RoleChecker is the slice of the authorization service the workflow
// needs: rule evaluation for the acting account, plus a raw role
// lookup for checks on accounts other than the actor (reviewer
// qualification, confidential-comment visibility).
type RoleChecker interface {
	Authorize(ctx context.Context, actorID string, action authz.Action, res authz.Resource) error
	HasAnyRole(ctx context.Context, accountID string, conferenceID string, roles ...authz.Role) (bool, error)
}

// Service drives the paper/assignment/review/decision lifecycle and
// enforces who may trigger each transition.
type Service struct {
	store   Store
	roles   RoleChecker
	auditor audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates a workflow service. The auditor may be nil to
// disable audit logging; metrics may be nil.
func NewService(store Store, roles RoleChecker, auditor audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if auditor == nil {
		auditor = audit.NopLogger{}
	}
	return &Service{
		store:   store,
		roles:   roles,
		auditor: auditor,
		logger:  logger,
		metrics: metrics,
	}
}

// CreatePaperRequest carries a new submission.
type CreatePaperRequest struct {
	ConferenceID string `json:"conference_id"`
	Title        string `json:"title"`
	Abstract     string `json:"abstract"`
	FileRef      string `json:"file_ref,omitempty"`
}

// CreatePaper submits a new paper. The submitter must hold the author
// role; the paper starts in Submitted.
func (s *Service) CreatePaper(ctx context.Context, actorID string, req CreatePaperRequest) (*Paper, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errdefs.Validation("title is required")
	}
	if strings.TrimSpace(req.Abstract) == "" {
		return nil, errdefs.Validation("abstract is required")
	}
	if req.ConferenceID == "" {
		return nil, errdefs.Validation("conference id is required")
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperCreate, authz.Resource{
		Kind:         string(audit.ResourceTypePaper),
		ConferenceID: req.ConferenceID,
	}); err != nil {
		return nil, err
	}

	paper := &Paper{
		ConferenceID: req.ConferenceID,
		OwnerID:      actorID,
		Title:        strings.TrimSpace(req.Title),
		Abstract:     strings.TrimSpace(req.Abstract),
		FileRef:      req.FileRef,
	}
	if err := s.store.CreatePaper(ctx, paper); err != nil {
		return nil, err
	}

	s.transition("paper", string(PaperSubmitted))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypePaperCreate, audit.ResourceTypePaper, paper.ID,
		map[string]interface{}{"conference_id": paper.ConferenceID}))
	return paper, nil
}

// GetPaper returns a paper to its owner, an assigned reviewer, or a
// chair or admin of its conference.
func (s *Service) GetPaper(ctx context.Context, actorID, paperID string) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if paper.OwnerID == actorID {
		return paper, nil
	}
	if assigned, err := s.store.HasActiveAssignment(ctx, paperID, actorID); err != nil {
		return nil, err
	} else if assigned {
		return paper, nil
	}
	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperRead, paperResource(paper)); err != nil {
		return nil, err
	}
	return paper, nil
}

// ListMyPapers returns the actor's own submissions.
func (s *Service) ListMyPapers(ctx context.Context, actorID string) ([]*Paper, error) {
	return s.store.ListPapersByOwner(ctx, actorID)
}

// UpdatePaperRequest carries edits to a paper's content.
type UpdatePaperRequest struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	FileRef  string `json:"file_ref,omitempty"`
}

// UpdatePaper edits a paper. Allowed for the owner or an admin, and
// only while the paper is not in a terminal state.
func (s *Service) UpdatePaper(ctx context.Context, actorID, paperID string, req UpdatePaperRequest) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperUpdate, paperResource(paper)); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) != "" {
		paper.Title = strings.TrimSpace(req.Title)
	}
	if strings.TrimSpace(req.Abstract) != "" {
		paper.Abstract = strings.TrimSpace(req.Abstract)
	}
	if req.FileRef != "" {
		paper.FileRef = req.FileRef
	}
	if err := s.store.UpdatePaperContent(ctx, paper); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.Mutation(ctx, audit.EventTypePaperUpdate, audit.ResourceTypePaper, paper.ID, nil))
	return paper, nil
}

// WithdrawPaper withdraws a paper. Only the owner may withdraw, and
// only before a decision lands.
func (s *Service) WithdrawPaper(ctx context.Context, actorID, paperID string) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperWithdraw, paperResource(paper)); err != nil {
		return nil, err
	}
	if !paper.Status.CanTransition(PaperWithdrawn) {
		return nil, errdefs.InvalidTransition("paper cannot be withdrawn from status %s", paper.Status)
	}

	if err := s.store.SetPaperStatus(ctx, paperID, paper.Status, PaperWithdrawn); err != nil {
		return nil, err
	}
	paper.Status = PaperWithdrawn

	s.transition("paper", string(PaperWithdrawn))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypePaperWithdraw, audit.ResourceTypePaper, paper.ID, nil))
	return paper, nil
}

// DeletePaper removes a paper outright. Only the owner may delete, and
// only before the paper enters review; once reviews exist the paper
// must be withdrawn instead.
func (s *Service) DeletePaper(ctx context.Context, actorID, paperID string) error {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperDelete, paperResource(paper)); err != nil {
		return err
	}
	if paper.Status != PaperSubmitted {
		return errdefs.InvalidTransition("paper can only be deleted before review begins")
	}
	count, err := s.store.CountReviewsByPaper(ctx, paperID)
	if err != nil {
		return err
	}
	if count > 0 {
		return errdefs.InvalidTransition("paper has reviews and must be withdrawn instead")
	}

	if err := s.store.DeletePaper(ctx, paperID); err != nil {
		return err
	}

	s.audit(ctx, audit.Mutation(ctx, audit.EventTypePaperDelete, audit.ResourceTypePaper, paperID, nil))
	return nil
}

// MarkCameraReady records the final file upload on an accepted paper.
func (s *Service) MarkCameraReady(ctx context.Context, actorID, paperID, fileRef string) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionPaperFinalize, paperResource(paper)); err != nil {
		return nil, err
	}
	if !paper.Status.CanTransition(PaperCameraReady) {
		return nil, errdefs.InvalidTransition("final version requires an accepted paper")
	}
	if fileRef == "" {
		return nil, errdefs.Validation("file reference is required")
	}

	paper.FileRef = fileRef
	if err := s.store.UpdatePaperContent(ctx, paper); err != nil {
		return nil, err
	}
	if err := s.store.SetPaperStatus(ctx, paperID, paper.Status, PaperCameraReady); err != nil {
		return nil, err
	}
	paper.Status = PaperCameraReady

	s.transition("paper", string(PaperCameraReady))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypePaperUpdate, audit.ResourceTypePaper, paper.ID,
		map[string]interface{}{"camera_ready": true}))
	return paper, nil
}

// CreateAssignmentRequest assigns a reviewer to a paper.
type CreateAssignmentRequest struct {
	PaperID    string     `json:"paper_id"`
	ReviewerID string     `json:"reviewer_id"`
	Deadline   *time.Time `json:"deadline,omitempty"`
}

// CreateAssignment assigns a reviewer. The actor must be a chair or
// admin for the paper's conference; the reviewer must hold a reviewer
// or chair role there, must not be the paper's author, and must not
// have a declared conflict.
func (s *Service) CreateAssignment(ctx context.Context, actorID string, req CreateAssignmentRequest) (*Assignment, error) {
	paper, err := s.store.GetPaper(ctx, req.PaperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionAssignmentCreate, authz.Resource{
		Kind:         string(audit.ResourceTypeAssignment),
		ConferenceID: paper.ConferenceID,
	}); err != nil {
		return nil, err
	}

	if paper.Status != PaperSubmitted && paper.Status != PaperUnderReview {
		return nil, errdefs.InvalidTransition("paper cannot receive assignments in status %s", paper.Status)
	}

	if req.ReviewerID == paper.OwnerID {
		return nil, errdefs.ConflictOfInterest("reviewer authored this paper")
	}
	if conflicted, err := s.store.HasConflict(ctx, req.PaperID, req.ReviewerID); err != nil {
		return nil, err
	} else if conflicted {
		return nil, errdefs.ConflictOfInterest("reviewer has a declared conflict with this paper")
	}

	if ok, err := s.roles.HasAnyRole(ctx, req.ReviewerID, paper.ConferenceID, authz.RoleReviewer, authz.RoleChair); err != nil {
		return nil, err
	} else if !ok {
		return nil, errdefs.Denied(errdefs.ReasonRoleMissing,
			"account is not qualified to review for this conference")
	}

	assignment := &Assignment{
		PaperID:    req.PaperID,
		ReviewerID: req.ReviewerID,
		Deadline:   req.Deadline,
	}
	if err := s.store.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	s.transition("assignment", string(AssignmentAssigned))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypeAssignmentCreate, audit.ResourceTypeAssignment, assignment.ID,
		map[string]interface{}{"paper_id": req.PaperID, "reviewer_id": req.ReviewerID}))
	return assignment, nil
}

// AcceptAssignment lets the assigned reviewer accept.
func (s *Service) AcceptAssignment(ctx context.Context, actorID, assignmentID string) (*Assignment, error) {
	return s.answerAssignment(ctx, actorID, assignmentID, AssignmentAccepted, audit.EventTypeAssignmentAccept)
}

// DeclineAssignment lets the assigned reviewer decline.
func (s *Service) DeclineAssignment(ctx context.Context, actorID, assignmentID string) (*Assignment, error) {
	return s.answerAssignment(ctx, actorID, assignmentID, AssignmentDeclined, audit.EventTypeAssignmentDecline)
}

func (s *Service) answerAssignment(ctx context.Context, actorID, assignmentID string, to AssignmentStatus, eventType audit.EventType) (*Assignment, error) {
	assignment, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionAssignmentAnswer, authz.Resource{
		Kind:    string(audit.ResourceTypeAssignment),
		ID:      assignmentID,
		OwnerID: assignment.ReviewerID,
	}); err != nil {
		return nil, err
	}
	if !assignment.Status.CanTransition(to) {
		return nil, errdefs.InvalidTransition("assignment cannot move from %s to %s", assignment.Status, to)
	}

	if err := s.store.SetAssignmentStatus(ctx, assignmentID, assignment.Status, to); err != nil {
		return nil, err
	}
	assignment.Status = to

	s.transition("assignment", string(to))
	s.audit(ctx, audit.Mutation(ctx, eventType, audit.ResourceTypeAssignment, assignmentID, nil))
	return assignment, nil
}

// ListMyAssignments returns the actor's review assignments.
func (s *Service) ListMyAssignments(ctx context.Context, actorID string) ([]*Assignment, error) {
	return s.store.ListAssignmentsByReviewer(ctx, actorID)
}

// SubmitReviewRequest carries a review submission.
type SubmitReviewRequest struct {
	AssignmentID        string `json:"assignment_id"`
	Score               int    `json:"score"`
	Comment             string `json:"comment,omitempty"`
	ConfidentialComment string `json:"confidential_comment,omitempty"`
}

// SubmitReview records a review. Re-submitting for the same assignment
// updates the existing review. The score is validated before any state
// changes.
func (s *Service) SubmitReview(ctx context.Context, actorID string, req SubmitReviewRequest) (*Review, error) {
	if req.Score < MinScore || req.Score > MaxScore {
		return nil, errdefs.Validation("score must be between %d and %d", MinScore, MaxScore)
	}

	assignment, err := s.store.GetAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.Authorize(ctx, actorID, authz.ActionReviewSubmit, authz.Resource{
		Kind:    string(audit.ResourceTypeReview),
		OwnerID: assignment.ReviewerID,
	}); err != nil {
		return nil, err
	}
	if assignment.Status == AssignmentDeclined {
		return nil, errdefs.InvalidTransition("declined assignments cannot be reviewed")
	}

	review := &Review{
		AssignmentID:        assignment.ID,
		PaperID:             assignment.PaperID,
		ReviewerID:          actorID,
		Score:               req.Score,
		Comment:             req.Comment,
		ConfidentialComment: req.ConfidentialComment,
	}
	if err := s.store.SubmitReview(ctx, review); err != nil {
		return nil, err
	}

	s.transition("assignment", string(AssignmentReviewed))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypeReviewSubmit, audit.ResourceTypeReview, review.ID,
		map[string]interface{}{"paper_id": review.PaperID, "score": review.Score}))
	return review, nil
}

// ListMyReviews returns the actor's submitted reviews.
func (s *Service) ListMyReviews(ctx context.Context, actorID string) ([]*Review, error) {
	return s.store.ListReviewsByReviewer(ctx, actorID)
}

// GetPaperReviews returns a paper's reviews. The owner sees reviews
// without confidential comments; chairs and admins see everything.
func (s *Service) GetPaperReviews(ctx context.Context, actorID, paperID string) ([]*Review, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionReviewsRead, authz.Resource{
		Kind:         string(audit.ResourceTypeReview),
		ID:           paperID,
		OwnerID:      paper.OwnerID,
		ConferenceID: paper.ConferenceID,
	}); err != nil {
		return nil, err
	}
	privileged, err := s.roles.HasAnyRole(ctx, actorID, paper.ConferenceID, authz.RoleChair, authz.RoleAdmin)
	if err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if !privileged {
		redacted := make([]*Review, 0, len(reviews))
		for _, r := range reviews {
			clone := *r
			clone.ConfidentialComment = ""
			redacted = append(redacted, &clone)
		}
		reviews = redacted
	}
	return reviews, nil
}

// DecisionRequest carries a chair's verdict.
type DecisionRequest struct {
	PaperID string `json:"paper_id"`
	Result  string `json:"result"`
	Comment string `json:"comment,omitempty"`
}

// RecordDecision records the final verdict on a reviewed paper. Only a
// chair scoped to the paper's conference may decide; the decision is
// terminal.
func (s *Service) RecordDecision(ctx context.Context, actorID string, req DecisionRequest) (*Decision, error) {
	result, err := ParseDecisionResult(req.Result)
	if err != nil {
		return nil, err
	}

	paper, err := s.store.GetPaper(ctx, req.PaperID)
	if err != nil {
		return nil, err
	}

	if err := s.roles.Authorize(ctx, actorID, authz.ActionDecisionRecord, authz.Resource{
		Kind:         string(audit.ResourceTypeDecision),
		ConferenceID: paper.ConferenceID,
	}); err != nil {
		return nil, err
	}

	if paper.Status != PaperReviewed {
		if _, err := s.store.GetDecision(ctx, req.PaperID); err == nil {
			return nil, errdefs.AlreadyDecided("paper already has a decision")
		}
		return nil, errdefs.InvalidTransition("decision requires a fully reviewed paper, not %s", paper.Status)
	}

	decision := &Decision{
		PaperID: req.PaperID,
		ChairID: actorID,
		Result:  result,
		Comment: req.Comment,
	}
	if err := s.store.RecordDecision(ctx, decision); err != nil {
		return nil, err
	}

	s.transition("paper", string(result.PaperStatus()))
	s.audit(ctx, audit.Mutation(ctx, audit.EventTypeDecisionRecord, audit.ResourceTypeDecision, decision.ID,
		map[string]interface{}{"paper_id": req.PaperID, "result": string(result)}))
	return decision, nil
}

// ConflictRequest declares a conflict of interest.
type ConflictRequest struct {
	PaperID    string `json:"paper_id"`
	ReviewerID string `json:"reviewer_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// DeclareConflict records a conflict of interest. Reviewers declare
// their own conflicts; chairs and admins may declare on behalf of any
// reviewer.
func (s *Service) DeclareConflict(ctx context.Context, actorID string, req ConflictRequest) (*Conflict, error) {
	paper, err := s.store.GetPaper(ctx, req.PaperID)
	if err != nil {
		return nil, err
	}

	reviewerID := req.ReviewerID
	if reviewerID == "" {
		reviewerID = actorID
	}
	if reviewerID != actorID {
		if err := s.roles.Authorize(ctx, actorID, authz.ActionConflictDeclare, authz.Resource{
			Kind:         string(audit.ResourceTypeConflict),
			ConferenceID: paper.ConferenceID,
		}); err != nil {
			return nil, err
		}
	}

	conflict := &Conflict{
		PaperID:    req.PaperID,
		ReviewerID: reviewerID,
		DeclaredBy: actorID,
		Reason:     req.Reason,
	}
	if err := s.store.DeclareConflict(ctx, conflict); err != nil {
		return nil, err
	}

	s.audit(ctx, audit.Mutation(ctx, audit.EventTypeConflictDeclare, audit.ResourceTypeConflict, conflict.ID,
		map[string]interface{}{"paper_id": req.PaperID, "reviewer_id": reviewerID}))
	return conflict, nil
}

// paperResource projects a paper into the shape the rules table
// evaluates against.
func paperResource(p *Paper) authz.Resource {
	return authz.Resource{
		Kind:         string(audit.ResourceTypePaper),
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		ConferenceID: p.ConferenceID,
		State:        string(p.Status),
	}
}

func (s *Service) transition(entity, to string) {
	if s.metrics != nil {
		s.metrics.WorkflowTransitionsTotal.WithLabelValues(entity, to).Inc()
	}
}

func (s *Service) audit(ctx context.Context, event *audit.Event) {
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to write audit event")
	}
}
