package recovery

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/uth-confms/confms/pkg/accounts"
	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/auth"
	"github.com/uth-confms/confms/pkg/errdefs"
	"github.com/uth-confms/confms/pkg/observability"
)

// unavailable is returned for unknown identifiers and for accounts
// without security questions alike, so the flow leaks nothing about
// which accounts exist.
const unavailable = "account recovery is not available for this identifier"

// Challenge is the first-step response: one question, never the answer.
type Challenge struct {
	Question string `json:"question"`
}

// ResetRequest is the second step. Question must match the challenged
// question text exactly; the answer comparison is case-insensitive and
// ignores surrounding whitespace.
type ResetRequest struct {
	Identifier  string `json:"identifier"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	NewPassword string `json:"new_password"`
}

// Service implements the stateless two-step recovery protocol. Each
// step independently re-derives everything from the account record, so
// no challenge state is held between calls.
type Service struct {
	store   accounts.Store
	hasher  *auth.PasswordHasher
	auditor audit.Logger
	logger  *observability.Logger

	// pick selects a question index; swapped out in tests.
	pick func(n int) int
}

// NewService creates a recovery service. The auditor may be nil to
// disable audit logging.
func NewService(store accounts.Store, hasher *auth.PasswordHasher, auditor audit.Logger, logger *observability.Logger) *Service {
	if auditor == nil {
		auditor = audit.NopLogger{}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{
		store:   store,
		hasher:  hasher,
		auditor: auditor,
		logger:  logger,
		pick:    rng.Intn,
	}
}

// ChallengeAccount starts recovery: it selects one of the account's
// security questions at random and returns its text.
func (s *Service) ChallengeAccount(ctx context.Context, identifier string) (*Challenge, error) {
	account, err := s.lookup(ctx, identifier)
	if err != nil {
		if errdefs.IsNotFound(err) {
			s.audit(ctx, audit.Authentication(ctx, audit.EventTypeRecoveryChallenge, audit.EventStatusFailure,
				"", identifier, "recovery challenge for unknown identifier"))
			return nil, errdefs.NotFound(unavailable)
		}
		return nil, err
	}

	if len(account.SecurityQuestions) == 0 {
		s.audit(ctx, audit.Authentication(ctx, audit.EventTypeRecoveryChallenge, audit.EventStatusFailure,
			account.ID, account.Username, "recovery challenge without configured questions"))
		return nil, errdefs.NotFound(unavailable)
	}

	question := account.SecurityQuestions[s.pick(len(account.SecurityQuestions))]
	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeRecoveryChallenge, audit.EventStatusSuccess,
		account.ID, account.Username, "recovery challenge issued"))

	return &Challenge{Question: question.Question}, nil
}

// Reset completes recovery: it re-locates the challenged question,
// compares the normalized answer, and on match sets the new password.
// Existing session tokens stay valid until natural expiry.
func (s *Service) Reset(ctx context.Context, req ResetRequest) error {
	account, err := s.lookup(ctx, req.Identifier)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return errdefs.NotFound(unavailable)
		}
		return err
	}

	stored, ok := findQuestion(account.SecurityQuestions, req.Question)
	if !ok || stored.Answer != accounts.NormalizeAnswer(req.Answer) {
		// A question the account never stored and a wrong answer look
		// identical to the caller.
		s.audit(ctx, audit.Authentication(ctx, audit.EventTypeRecoveryAnswerIncorrect, audit.EventStatusFailure,
			account.ID, account.Username, "recovery answer incorrect"))
		return errdefs.AnswerIncorrect("security answer is incorrect")
	}

	if err := accounts.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return err
	}

	s.audit(ctx, audit.Authentication(ctx, audit.EventTypeRecoveryReset, audit.EventStatusSuccess,
		account.ID, account.Username, "password reset via security question"))
	return nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (*accounts.Account, error) {
	if strings.Contains(identifier, "@") {
		account, err := s.store.FindByEmail(ctx, identifier)
		if err == nil || !errdefs.IsNotFound(err) {
			return account, err
		}
		return s.store.FindByUsername(ctx, identifier)
	}

	account, err := s.store.FindByUsername(ctx, identifier)
	if err == nil || !errdefs.IsNotFound(err) {
		return account, err
	}
	return s.store.FindByEmail(ctx, identifier)
}

func findQuestion(questions []accounts.SecurityQuestion, text string) (accounts.SecurityQuestion, bool) {
	for _, q := range questions {
		if q.Question == text {
			return q, true
		}
	}
	return accounts.SecurityQuestion{}, false
}

func (s *Service) audit(ctx context.Context, event *audit.Event) {
	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WithError(err).Error("failed to write audit event")
	}
}
