package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/middleware"
)

type registerRequest struct {
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Password    string               `json:"password"`
	Role        string               `json:"role"`
	EmployeeID  string               `json:"employeeId"`
	Department  string               `json:"department"`
	PhoneNumber string               `json:"phoneNumber"`
	Designation string               `json:"designation"`
	OTPMethod   authcore.ChannelList `json:"otpMethod"`
	IsActive    *bool                `json:"isActive"`
	OTPEnabled  *bool                `json:"otpEnabled"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.engine.Register(r.Context(), authcore.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        authcore.Role(req.Role),
		EmployeeID:  req.EmployeeID,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Designation: req.Designation,
		OTPMethods:  req.OTPMethod,
		IsActive:    req.IsActive,
		OTPEnabled:  req.OTPEnabled,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusCreated, sess)
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	OTPMethod string `json:"otpMethod"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.engine.Login(r.Context(), req.Email, req.Password, authcore.Channel(req.OTPMethod))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if res.Session != nil {
		s.writeSession(w, http.StatusOK, res.Session)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "OTP sent",
		"data": map[string]any{
			"userId":    res.Challenge.UserID,
			"otpMethod": string(res.Challenge.Channel),
		},
	})
}

type verifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.engine.VerifyOTP(r.Context(), req.UserID, req.OTP)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.engine.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "reset token issued",
		"resetToken": token,
	})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.engine.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, authcore.ErrAuthRequired)
		return
	}

	var req updatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := s.engine.UpdatePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, sess)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, authcore.ErrAuthRequired)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": toUserResponse(user)},
	})
}

type updateMeRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber"`
	Designation *string `json:"designation"`
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, authcore.ErrAuthRequired)
		return
	}

	var req updateMeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.engine.UpdateProfile(r.Context(), user.ID, authcore.ProfileUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Designation: req.Designation,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   map[string]any{"user": toUserResponse(updated)},
	})
}
