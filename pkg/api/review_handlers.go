package api

import (
	"net/http"

	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/middleware"
	"github.com/uth-confms/confms/pkg/workflow"
)

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreateAssignmentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	assignment, err := s.workflow.CreateAssignment(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, assignment)
}

func (s *Server) myAssignments(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	assignments, err := s.workflow.ListMyAssignments(r.Context(), claims.AccountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"assignments": assignments})
}

func (s *Server) acceptAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	assignment, err := s.workflow.AcceptAssignment(r.Context(), claims.AccountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, assignment)
}

func (s *Server) declineAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	assignment, err := s.workflow.DeclineAssignment(r.Context(), claims.AccountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, assignment)
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	var req workflow.SubmitReviewRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	review, err := s.workflow.SubmitReview(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, review)
}

func (s *Server) myReviews(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	reviews, err := s.workflow.ListMyReviews(r.Context(), claims.AccountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"reviews": reviews})
}

func (s *Server) recordDecision(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req workflow.DecisionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	req.PaperID = id

	claims := middleware.GetClaims(r)
	decision, err := s.workflow.RecordDecision(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, decision)
}
