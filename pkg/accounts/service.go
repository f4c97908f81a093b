package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/auth"
	"github.com/uth-confms/confms/pkg/authz"
	"github.com/uth-confms/confms/pkg/errdefs"
	"github.com/uth-confms/confms/pkg/observability"
)

// loginDenial is the single message every failed authentication maps
// to, regardless of cause, to prevent username enumeration.
const loginDenial = "wrong username or password"

// RoleDirectory is the slice of the authorization service the account
// service needs: default-role grants at registration, role lookups for
// token claims, and rule evaluation for the admin-only operations.
type RoleDirectory interface {
	GrantDefaultRole(ctx context.Context, accountID string) error
	ActiveRoleNames(ctx context.Context, accountID string) ([]string, error)
	Authorize(ctx context.Context, actorID string, action authz.Action, res authz.Resource) error
}

// Service implements registration, authentication, and account
// management.
type Service struct {
	store   Store
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenIssuer
	roles   RoleDirectory
	auditor audit.Logger
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewService creates an account service. The auditor may be nil to
// disable audit logging; metrics may be nil.
func NewService(store Store, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, roles RoleDirectory, auditor audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Service {
	if auditor == nil {
		auditor = audit.NopLogger{}
	}
	return &Service{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		roles:   roles,
		auditor: auditor,
		logger:  logger,
		metrics: metrics,
	}
}

// Register creates a new account with the default author role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if err := ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := ValidateFullName(req.FullName); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	questions, err := NormalizeSecurityQuestions(req.SecurityQuestions)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:          req.Username,
		Email:             req.Email,
		FullName:          strings.TrimSpace(req.FullName),
		PasswordHash:      hash,
		SecurityQuestions: questions,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.roles.GrantDefaultRole(ctx, account.ID); err != nil {
		s.logger.WithError(err).WithField("account_id", account.ID).
			Error("failed to grant default role to new account")
		return nil, err
	}

	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthRegister, audit.EventStatusSuccess,
		account.ID, account.Username, "account registered"))
	return account, nil
}

// Login authenticates by username or email. Every failure surfaces the
// same generic denial.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	account, err := s.lookup(ctx, req.Identifier)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, s.loginFailed(ctx, req.Identifier)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, s.loginFailed(ctx, account.Username)
	}

	roles, err := s.roles.ActiveRoleNames(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account.ID, account.Username, roles)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
		s.metrics.TokensIssuedTotal.Inc()
	}
	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthLogin, audit.EventStatusSuccess,
		account.ID, account.Username, "login succeeded"))

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.TTL()),
		Account:   account,
		Roles:     roles,
	}, nil
}

// lookup resolves a login identifier. Identifiers containing '@' are
// tried as an email first, then as a username; everything else in the
// opposite order.
func (s *Service) lookup(ctx context.Context, identifier string) (*Account, error) {
	first, second := s.store.FindByUsername, s.store.FindByEmail
	if strings.Contains(identifier, "@") {
		first, second = second, first
	}

	account, err := first(ctx, identifier)
	if err == nil {
		return account, nil
	}
	if !errdefs.IsNotFound(err) {
		return nil, err
	}
	return second(ctx, identifier)
}

func (s *Service) loginFailed(ctx context.Context, identifier string) error {
	if s.metrics != nil {
		s.metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
	}
	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthLoginFailed, audit.EventStatusFailure,
		"", identifier, loginDenial))
	return errdefs.NotAuthenticated(loginDenial)
}

// Logout records the logout. Sessions are stateless, so there is
// nothing to invalidate; the token stays valid until natural expiry.
func (s *Service) Logout(ctx context.Context, accountID, username string) {
	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthLogout, audit.EventStatusSuccess,
		accountID, username, "logged out"))
}

// ChangePassword replaces the password after re-verifying the current
// one. The new password must satisfy the policy and differ from the
// old one.
func (s *Service) ChangePassword(ctx context.Context, accountID string, req ChangePasswordRequest) error {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, account.PasswordHash) {
		s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthPasswordChange, audit.EventStatusFailure,
			account.ID, account.Username, "current password incorrect"))
		return errdefs.NotAuthenticated("current password is incorrect")
	}
	if req.NewPassword == req.CurrentPassword {
		return errdefs.Validation("new password must differ from the current password")
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}

	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeAuthPasswordChange, audit.EventStatusSuccess,
		account.ID, account.Username, "password changed"))
	return nil
}

// GetCurrentUser returns the authenticated account with its roles.
func (s *Service) GetCurrentUser(ctx context.Context, accountID string) (*Profile, error) {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.ActiveRoleNames(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: account, Roles: roles}, nil
}

// UpdateSecurityQuestions replaces the account's security question set.
func (s *Service) UpdateSecurityQuestions(ctx context.Context, accountID string, questions []SecurityQuestion) error {
	if len(questions) == 0 {
		return errdefs.Validation("at least one security question is required")
	}
	normalized, err := NormalizeSecurityQuestions(questions)
	if err != nil {
		return err
	}
	return s.store.UpdateSecurityData(ctx, accountID, normalized)
}

// ListUsers returns accounts, optionally filtered by role. Admin only.
func (s *Service) ListUsers(ctx context.Context, actorID string, filter ListFilter) ([]*Account, error) {
	if err := s.roles.Authorize(ctx, actorID, authz.ActionUserList, authz.Resource{
		Kind: string(audit.ResourceTypeAccount),
	}); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

// Deactivate soft-deletes an account, excluding it from every lookup
// and authentication. Admin only.
func (s *Service) Deactivate(ctx context.Context, actorID, accountID string) error {
	if err := s.roles.Authorize(ctx, actorID, authz.ActionUserDeactivate, authz.Resource{
		Kind: string(audit.ResourceTypeAccount), ID: accountID,
	}); err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, accountID); err != nil {
		return err
	}

	s.audit(ctx, audit.Authorization(ctx, audit.EventTypeAdminUserDeactivate, audit.EventStatusSuccess,
		audit.ResourceTypeAccount, accountID, "account deactivated"))
	return nil
}

func (s *Service) audit(ctx context.Context, event *audit.Event) {
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to write audit event")
	}
}
