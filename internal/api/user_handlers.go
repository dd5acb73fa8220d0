package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := repository.ListUsersParams{AfterEmail: q.Get("after")}
	if role := q.Get("role"); role != "" {
		ur := models.UserRole(role)
		p.Role = &ur
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil {
		p.PageSize = n
	}
	out, err := a.users.List(r.Context(), p)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"users": out, "count": len(out)})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, user)
}

func (a *API) deactivateUser(w http.ResponseWriter, r *http.Request) {
	if err := a.users.Deactivate(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := repository.ListAuditLogsParams{
		Owner:   q.Get("owner"),
		Action:  q.Get("action"),
		AfterID: q.Get("after"),
	}
	if n, err := strconv.Atoi(q.Get("page_size")); err == nil {
		p.PageSize = n
	}
	if s := q.Get("since"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			a.writeBadRequest(w, "since must be RFC3339")
			return
		}
		p.Since = &ts
	}
	if s := q.Get("until"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			a.writeBadRequest(w, "until must be RFC3339")
			return
		}
		p.Until = &ts
	}
	out, err := a.logs.List(r.Context(), p)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"audit_logs": out, "count": len(out)})
}
