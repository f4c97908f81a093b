package api

import (
	"net/http"

	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/recovery"
)

func (s *Server) recoveryChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	challenge, err := s.recovery.ChallengeAccount(r.Context(), req.Identifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, challenge)
}

func (s *Server) recoveryReset(w http.ResponseWriter, r *http.Request) {
	var req recovery.ResetRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := s.recovery.Reset(r.Context(), req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
