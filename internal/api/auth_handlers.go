package api

import (
	"net/http"

	"droneMedicalDelivery/internal/auth"
	"droneMedicalDelivery/internal/users"
	"droneMedicalDelivery/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	user, token, err := a.users.Login(r.Context(), req.Email, req.Password, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

type registerUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Type     models.UserType `json:"type,omitempty"`
}

// registerUser is the public sign-up endpoint. Role is always USER here;
// staff and admin accounts are provisioned out of band.
func (a *API) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	user, err := a.users.Register(r.Context(), users.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleUser,
		Type:     req.Type,
	}, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	if err := a.users.ChangePassword(r.Context(), p.ID, req.OldPassword, req.NewPassword, actorFrom(r)); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusNoContent, nil)
}
