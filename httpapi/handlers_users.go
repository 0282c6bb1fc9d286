package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/middleware"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.engine.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(out),
		"data":    map[string]any{"users": out},
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": toUserResponse(user)},
	})
}

type adminUpdateRequest struct {
	Name        *string              `json:"name"`
	Department  *string              `json:"department"`
	Designation *string              `json:"designation"`
	Role        *string              `json:"role"`
	IsActive    *bool                `json:"isActive"`
	OTPEnabled  *bool                `json:"otpEnabled"`
	OTPMethod   authcore.ChannelList `json:"otpMethod"`
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	upd := authcore.AdminUpdate{
		Name:        req.Name,
		Department:  req.Department,
		Designation: req.Designation,
		IsActive:    req.IsActive,
		OTPEnabled:  req.OTPEnabled,
		OTPMethods:  req.OTPMethod,
	}
	if req.Role != nil {
		role := authcore.Role(*req.Role)
		upd.Role = &role
	}

	user, err := s.engine.AdminUpdateUser(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": toUserResponse(user)},
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}

	if err := s.engine.DeleteUser(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
