package api

import (
	"net/http"

	"github.com/uth-confms/confms/pkg/accounts"
	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/middleware"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	account, err := s.accounts.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, account)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req accounts.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	s.accounts.Logout(r.Context(), claims.AccountID, claims.Username)
	httputil.WriteNoContent(w)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req accounts.ChangePasswordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	if err := s.accounts.ChangePassword(r.Context(), claims.AccountID, req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) updateSecurityQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Questions []accounts.SecurityQuestion `json:"questions"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	if err := s.accounts.UpdateSecurityQuestions(r.Context(), claims.AccountID, req.Questions); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	profile, err := s.accounts.GetCurrentUser(r.Context(), claims.AccountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, profile)
}
