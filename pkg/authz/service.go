package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/errdefs"
	"github.com/uth-confms/confms/pkg/observability"
)

// Service evaluates role checks and manages role assignments.
type Service struct {
	store   Store
	cache   *RoleCache
	auditor audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates an authorization service. The cache may be nil to
// disable caching; the auditor may be nil to disable audit logging.
func NewService(store Store, cache *RoleCache, auditor audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if auditor == nil {
		auditor = audit.NopLogger{}
	}
	return &Service{
		store:   store,
		cache:   cache,
		auditor: auditor,
		logger:  logger,
		metrics: metrics,
	}
}

// GrantRequest describes a role grant or revocation.
type GrantRequest struct {
	AccountID    string `json:"account_id"`
	Role         string `json:"role"`
	ConferenceID string `json:"conference_id,omitempty"`
}

// Grant assigns a role to an account. Only admins may grant roles.
// Granting an already-held role is a no-op at the storage level.
func (s *Service) Grant(ctx context.Context, actorID string, req GrantRequest) (*RoleAssignment, error) {
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if req.AccountID == "" {
		return nil, errdefs.Validation("account id is required")
	}

	if err := s.Authorize(ctx, actorID, ActionRoleGrant, Resource{
		Kind: string(audit.ResourceTypeRole), ID: req.AccountID,
	}); err != nil {
		return nil, err
	}

	assignment := &RoleAssignment{
		AccountID:    req.AccountID,
		Role:         role,
		ConferenceID: req.ConferenceID,
		GrantedBy:    actorID,
		GrantedAt:    time.Now().UTC(),
	}
	if err := s.store.Grant(ctx, assignment); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.AccountID)

	event := audit.Authorization(ctx, audit.EventTypeAuthzRoleGrant, audit.EventStatusSuccess,
		audit.ResourceTypeRole, req.AccountID,
		fmt.Sprintf("granted role %s", role))
	event.Metadata = map[string]interface{}{"role": string(role), "conference_id": req.ConferenceID}
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to audit role grant")
	}

	return assignment, nil
}

// Revoke removes a role from an account. Only admins may revoke roles.
func (s *Service) Revoke(ctx context.Context, actorID string, req GrantRequest) error {
	role, err := ParseRole(req.Role)
	if err != nil {
		return err
	}
	if req.AccountID == "" {
		return errdefs.Validation("account id is required")
	}

	if err := s.Authorize(ctx, actorID, ActionRoleRevoke, Resource{
		Kind: string(audit.ResourceTypeRole), ID: req.AccountID,
	}); err != nil {
		return err
	}

	revoked, err := s.store.Revoke(ctx, req.AccountID, role, req.ConferenceID)
	if err != nil {
		return err
	}
	if !revoked {
		return errdefs.NotFound("account does not hold role %s", role)
	}
	s.invalidate(ctx, req.AccountID)

	event := audit.Authorization(ctx, audit.EventTypeAuthzRoleRevoke, audit.EventStatusSuccess,
		audit.ResourceTypeRole, req.AccountID,
		fmt.Sprintf("revoked role %s", role))
	event.Metadata = map[string]interface{}{"role": string(role), "conference_id": req.ConferenceID}
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to audit role revocation")
	}

	return nil
}

// GrantDefaultRole assigns the default role to a freshly registered
// account. It bypasses the admin check; the caller is the registration
// flow itself.
func (s *Service) GrantDefaultRole(ctx context.Context, accountID string) error {
	assignment := &RoleAssignment{
		AccountID: accountID,
		Role:      DefaultRole,
		GrantedAt: time.Now().UTC(),
	}
	if err := s.store.Grant(ctx, assignment); err != nil {
		return err
	}
	s.invalidate(ctx, accountID)
	return nil
}

// RolesFor returns the active assignments for an account, consulting
// the cache first.
func (s *Service) RolesFor(ctx context.Context, accountID string) ([]RoleAssignment, error) {
	if s.cache != nil {
		if assignments, ok := s.cache.Get(ctx, accountID); ok {
			return assignments, nil
		}
	}

	assignments, err := s.store.ListActive(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, accountID, assignments)
	}
	return assignments, nil
}

// ActiveRoleNames returns the distinct role names held by an account.
func (s *Service) ActiveRoleNames(ctx context.Context, accountID string) ([]string, error) {
	assignments, err := s.RolesFor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[Role]bool, len(assignments))
	var names []string
	for _, a := range assignments {
		if !seen[a.Role] {
			seen[a.Role] = true
			names = append(names, string(a.Role))
		}
	}
	return names, nil
}

// HasRole reports whether the account holds the role for a conference.
// An empty conferenceID asks whether the account holds the role anywhere.
func (s *Service) HasRole(ctx context.Context, accountID string, role Role, conferenceID string) (bool, error) {
	assignments, err := s.RolesFor(ctx, accountID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.Matches(role, conferenceID) {
			return true, nil
		}
	}
	return false, nil
}

// HasAnyRole reports whether the account holds at least one of the roles.
func (s *Service) HasAnyRole(ctx context.Context, accountID string, conferenceID string, roles ...Role) (bool, error) {
	assignments, err := s.RolesFor(ctx, accountID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		for _, role := range roles {
			if a.Matches(role, conferenceID) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Service) invalidate(ctx context.Context, accountID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, accountID)
	}
}

func (s *Service) countCheck(action string, allowed bool) {
	if s.metrics == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	s.metrics.AuthzChecksTotal.WithLabelValues(action, result).Inc()
}
