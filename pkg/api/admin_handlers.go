package api

import (
	"net/http"
	"time"

	"github.com/uth-confms/confms/pkg/accounts"
	"github.com/uth-confms/confms/pkg/audit"
	"github.com/uth-confms/confms/pkg/authz"
	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/middleware"
)

func (s *Server) grantRole(w http.ResponseWriter, r *http.Request) {
	var req authz.GrantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	assignment, err := s.authz.Grant(r.Context(), claims.AccountID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, assignment)
}

func (s *Server) revokeRole(w http.ResponseWriter, r *http.Request) {
	var req authz.GrantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims := middleware.GetClaims(r)
	if err := s.authz.Revoke(r.Context(), claims.AccountID, req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.QueryInt(r, "page", 1)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	perPage, err := httputil.QueryInt(r, "per_page", accounts.DefaultPerPage)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := accounts.ListFilter{
		Role:    httputil.QueryString(r, "role", ""),
		Page:    page,
		PerPage: perPage,
	}

	claims := middleware.GetClaims(r)
	users, err := s.accounts.ListUsers(r.Context(), claims.AccountID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"users": users,
		"page":  filter.Page,
	})
}

func (s *Server) deactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.PathStringOrError(w, r, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(r)
	if err := s.accounts.Deactivate(r.Context(), claims.AccountID, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (s *Server) searchAuditEvents(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if err := s.authz.Authorize(r.Context(), claims.AccountID, authz.ActionAuditSearch, authz.Resource{}); err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, err := httputil.QueryInt(r, "limit", 100)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := audit.SearchFilter{
		AccountID:  httputil.QueryString(r, "account_id", ""),
		ResourceID: httputil.QueryString(r, "resource_id", ""),
		Limit:      limit,
		Offset:     offset,
	}
	if typ := httputil.QueryString(r, "event_type", ""); typ != "" {
		filter.EventTypes = []audit.EventType{audit.EventType(typ)}
	}
	if res := httputil.QueryString(r, "resource_type", ""); res != "" {
		filter.ResourceType = audit.ResourceType(res)
	}
	if since := httputil.QueryString(r, "since", ""); since != "" {
		start, err := time.Parse(time.RFC3339, since)
		if err != nil {
			httputil.WriteErrorMessage(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		filter.StartTime = &start
	}

	events, err := s.auditor.Search(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"events": events})
}
