package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/uth-confms/confms/pkg/accounts"
	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/auth"
	"github.com/uth-confms/confms/pkg/authz"
	"github.com/uth-confms/confms/pkg/middleware"
	"github.com/uth-confms/confms/pkg/observability"
	"github.com/uth-confms/confms/pkg/recovery"
	"github.com/uth-confms/confms/pkg/workflow"
)

// AuditSearcher is the audit backend slice the admin endpoints need.
type AuditSearcher interface {
	Search(ctx context.Context, filter audit.SearchFilter) ([]*audit.Event, error)
}

// Server wires the services into an HTTP API.
type Server struct {
	router *mux.Router

	accounts *accounts.Service
	recovery *recovery.Service
	authz    *authz.Service
	workflow *workflow.Service
	auditor  AuditSearcher

	logger  *observability.Logger
	metrics *observability.Metrics
}

// Deps carries everything the server needs.
type Deps struct {
	Accounts *accounts.Service
	Recovery *recovery.Service
	Authz    *authz.Service
	Workflow *workflow.Service
	Auditor  AuditSearcher // may be nil; disables the audit endpoints
	Tokens   *auth.TokenIssuer
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

// NewServer creates the API server and mounts all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		accounts: deps.Accounts,
		recovery: deps.Recovery,
		authz:    deps.Authz,
		workflow: deps.Workflow,
		auditor:  deps.Auditor,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
	s.setupRoutes(deps.Tokens)
	return s
}

func (s *Server) setupRoutes(tokens *auth.TokenIssuer) {
	common := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(s.logger),
		middleware.Logging(s.logger),
	)
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	}
	s.router.Use(common)

	s.router.HandleFunc("/health", s.health).Methods("GET")

	// Public routes: registration, login, account recovery.
	public := s.router.PathPrefix("/api/v1").Subrouter()
	public.HandleFunc("/auth/register", s.register).Methods("POST")
	public.HandleFunc("/auth/login", s.login).Methods("POST")
	public.HandleFunc("/recovery/challenge", s.recoveryChallenge).Methods("POST")
	public.HandleFunc("/recovery/reset", s.recoveryReset).Methods("POST")

	// Everything else requires a valid session token.
	authn := middleware.NewAuthenticator(tokens, false, s.metrics)
	protected := s.router.PathPrefix("/api/v1").Subrouter()
	protected.Use(authn.Handler)

	protected.HandleFunc("/auth/logout", s.logout).Methods("POST")
	protected.HandleFunc("/auth/password", s.changePassword).Methods("PUT")
	protected.HandleFunc("/auth/security-questions", s.updateSecurityQuestions).Methods("PUT")
	protected.HandleFunc("/me", s.currentUser).Methods("GET")

	protected.HandleFunc("/roles", s.grantRole).Methods("POST")
	protected.HandleFunc("/roles", s.revokeRole).Methods("DELETE")
	protected.HandleFunc("/users", s.listUsers).Methods("GET")
	protected.HandleFunc("/users/{id}", s.deactivateUser).Methods("DELETE")

	protected.HandleFunc("/papers", s.createPaper).Methods("POST")
	protected.HandleFunc("/papers/mine", s.myPapers).Methods("GET")
	protected.HandleFunc("/papers/{id}", s.getPaper).Methods("GET")
	protected.HandleFunc("/papers/{id}", s.updatePaper).Methods("PUT")
	protected.HandleFunc("/papers/{id}", s.deletePaper).Methods("DELETE")
	protected.HandleFunc("/papers/{id}/withdraw", s.withdrawPaper).Methods("POST")
	protected.HandleFunc("/papers/{id}/camera-ready", s.markCameraReady).Methods("POST")
	protected.HandleFunc("/papers/{id}/reviews", s.paperReviews).Methods("GET")
	protected.HandleFunc("/papers/{id}/decision", s.recordDecision).Methods("POST")

	protected.HandleFunc("/assignments", s.createAssignment).Methods("POST")
	protected.HandleFunc("/assignments/mine", s.myAssignments).Methods("GET")
	protected.HandleFunc("/assignments/{id}/accept", s.acceptAssignment).Methods("POST")
	protected.HandleFunc("/assignments/{id}/decline", s.declineAssignment).Methods("POST")

	protected.HandleFunc("/reviews", s.submitReview).Methods("POST")
	protected.HandleFunc("/reviews/mine", s.myReviews).Methods("GET")

	protected.HandleFunc("/conflicts", s.declareConflict).Methods("POST")

	if s.auditor != nil {
		protected.HandleFunc("/audit/events", s.searchAuditEvents).Methods("GET")
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
