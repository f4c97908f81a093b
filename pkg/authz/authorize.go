package authz

import (
	"context"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/errdefs"
)

// Action names a protected operation. Every service routes its access
// decisions through the rules table keyed by these names.
type Action string

const (
	ActionPaperCreate      Action = "paper.create"
	ActionPaperRead        Action = "paper.read"
	ActionPaperUpdate      Action = "paper.update"
	ActionPaperWithdraw    Action = "paper.withdraw"
	ActionPaperDelete      Action = "paper.delete"
	ActionPaperFinalize    Action = "paper.camera_ready"
	ActionAssignmentCreate Action = "assignment.create"
	ActionAssignmentAnswer Action = "assignment.answer"
	ActionReviewSubmit     Action = "review.submit"
	ActionReviewsRead      Action = "reviews.read"
	ActionDecisionRecord   Action = "decision.record"
	ActionConflictDeclare  Action = "conflict.declare"
	ActionRoleGrant        Action = "role.grant"
	ActionRoleRevoke       Action = "role.revoke"
	ActionUserList         Action = "user.list"
	ActionUserDeactivate   Action = "user.deactivate"
	ActionAuditSearch      Action = "audit.search"
)

// Resource describes the object an action targets. OwnerID is the
// account the resource belongs to (the reviewer for assignments and
// reviews); ConferenceID scopes role checks; State carries the
// resource's lifecycle status for rules with a state predicate. Fields
// irrelevant to a rule may stay empty.
type Resource struct {
	Kind         string
	ID           string
	OwnerID      string
	ConferenceID string
	State        string
}

// rule says who may perform an action: the resource owner when owner
// is set, or any account holding one of roles within the resource's
// conference. A non-empty states list further restricts the action to
// resources currently in one of those states.
type rule struct {
	owner        bool
	roles        []Role
	states       []string
	message      string
	stateMessage string // format string applied to the resource state
}

var rules = map[Action]rule{
	ActionPaperCreate: {
		roles:   []Role{RoleAuthor},
		message: "submitting a paper requires the author role",
	},
	ActionPaperRead: {
		owner:   true,
		roles:   []Role{RoleChair, RoleAdmin},
		message: "paper is not visible to this account",
	},
	ActionPaperUpdate: {
		owner:        true,
		roles:        []Role{RoleAdmin},
		states:       []string{"submitted", "under_review", "reviewed", "camera_ready"},
		message:      "updating a paper requires ownership or the admin role",
		stateMessage: "paper can no longer be updated in status %s",
	},
	ActionPaperWithdraw: {
		owner:   true,
		message: "only the owner may withdraw a paper",
	},
	ActionPaperDelete: {
		owner:   true,
		message: "only the owner may delete a paper",
	},
	ActionPaperFinalize: {
		owner:   true,
		message: "only the owner may upload the final version",
	},
	ActionAssignmentCreate: {
		roles:   []Role{RoleChair, RoleAdmin},
		message: "assigning reviewers requires the chair role",
	},
	ActionAssignmentAnswer: {
		owner:   true,
		message: "only the assigned reviewer may respond to an assignment",
	},
	ActionReviewSubmit: {
		owner:   true,
		message: "only the assigned reviewer may submit this review",
	},
	ActionReviewsRead: {
		owner:   true,
		roles:   []Role{RoleChair, RoleAdmin},
		message: "reviews are not visible to this account",
	},
	ActionDecisionRecord: {
		roles:   []Role{RoleChair},
		message: "recording a decision requires the chair role for this conference",
	},
	ActionConflictDeclare: {
		roles:   []Role{RoleChair, RoleAdmin},
		message: "declaring a conflict for another reviewer requires the chair role",
	},
	ActionRoleGrant: {
		roles:   []Role{RoleAdmin},
		message: "admin role required",
	},
	ActionRoleRevoke: {
		roles:   []Role{RoleAdmin},
		message: "admin role required",
	},
	ActionUserList: {
		roles:   []Role{RoleAdmin},
		message: "admin role required",
	},
	ActionUserDeactivate: {
		roles:   []Role{RoleAdmin},
		message: "admin role required",
	},
	ActionAuditSearch: {
		roles:   []Role{RoleAdmin},
		message: "admin role required",
	},
}

// RoleFunc resolves whether an account holds a role within a
// conference. An empty conference asks about any conference.
type RoleFunc func(ctx context.Context, accountID string, role Role, conferenceID string) (bool, error)

// Check evaluates the rule for action against the resource and returns
// nil when the actor may proceed. Ownership is checked first, then role
// membership, then the rule's state predicate, so the denial reason
// tells the caller which requirement failed. Service.Authorize layers
// auditing and metrics on top of this; test doubles can call it
// directly with their own role lookup.
func Check(ctx context.Context, actorID string, action Action, res Resource, hasRole RoleFunc) error {
	if actorID == "" {
		return errdefs.Denied(errdefs.ReasonNotAuthenticated, "authentication required")
	}
	r, ok := rules[action]
	if !ok {
		return errdefs.Denied(errdefs.ReasonRoleMissing, "no rule permits %s", action)
	}

	allowed := r.owner && res.OwnerID != "" && res.OwnerID == actorID
	if !allowed {
		for _, role := range r.roles {
			held, err := hasRole(ctx, actorID, role, res.ConferenceID)
			if err != nil {
				return err
			}
			if held {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		reason := errdefs.ReasonRoleMissing
		if r.owner {
			reason = errdefs.ReasonNotOwner
		}
		return errdefs.Denied(reason, r.message)
	}

	if len(r.states) > 0 && !containsState(r.states, res.State) {
		return errdefs.Denied(errdefs.ReasonInvalidState, r.stateMessage, res.State)
	}
	return nil
}

func containsState(states []string, state string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// Authorize applies the rule for action to the resource on behalf of
// the actor. Denials are counted and leave an audit trail; lookup
// failures pass through unchanged.
func (s *Service) Authorize(ctx context.Context, actorID string, action Action, res Resource) error {
	err := Check(ctx, actorID, action, res, s.HasRole)
	if err != nil && !errdefs.IsNotAuthorized(err) {
		return err
	}
	s.countCheck(string(action), err == nil)
	if err != nil {
		s.denied(ctx, action, res, errdefs.ReasonOf(err), err.Error())
	}
	return err
}

func (s *Service) denied(ctx context.Context, action Action, res Resource, reason errdefs.Reason, message string) {
	if s.metrics != nil {
		s.metrics.AuthzDenialsTotal.WithLabelValues(string(action), string(reason)).Inc()
	}
	resourceType := audit.ResourceTypeRole
	if res.Kind != "" {
		resourceType = audit.ResourceType(res.Kind)
	}
	event := audit.Authorization(ctx, audit.EventTypeAuthzAccessDenied, audit.EventStatusDenied,
		resourceType, res.ID, message)
	event.Metadata = map[string]interface{}{"action": string(action)}
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to audit access denial")
	}
}
