package api

import (
	"net/http"

	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/middleware"
	"github.com/uth-confms/confms/pkg/workflow"
)

func (s *Server) createPaper(w http.ResponseWriter, r *http.Request) {
	var req workflow.CreatePaperRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	paper, err := s.workflow.CreatePaper(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, paper)
}

func (s *Server) myPapers(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	papers, err := s.workflow.ListMyPapers(r.Context(), claims.AccountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"papers": papers})
}

func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	paper, err := s.workflow.GetPaper(r.Context(), claims.AccountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, paper)
}

func (s *Server) updatePaper(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req workflow.UpdatePaperRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	paper, err := s.workflow.UpdatePaper(r.Context(), claims.AccountID, id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, paper)
}

func (s *Server) deletePaper(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	if err := s.workflow.DeletePaper(r.Context(), claims.AccountID, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) withdrawPaper(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	paper, err := s.workflow.WithdrawPaper(r.Context(), claims.AccountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, paper)
}

func (s *Server) markCameraReady(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		FileRef string `json:"file_ref"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	paper, err := s.workflow.MarkCameraReady(r.Context(), claims.AccountID, id, req.FileRef)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, paper)
}

func (s *Server) paperReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	reviews, err := s.workflow.GetPaperReviews(r.Context(), claims.AccountID, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"reviews": reviews})
}

func (s *Server) declareConflict(w http.ResponseWriter, r *http.Request) {
	var req workflow.ConflictRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	conflict, err := s.workflow.DeclareConflict(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, conflict)
}
