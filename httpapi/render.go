package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	authcore "github.com/tendera/authcore"
)

type userResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	EmployeeID  string   `json:"employeeId"`
	Department  string   `json:"department"`
	PhoneNumber string   `json:"phoneNumber"`
	Designation string   `json:"designation"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
	OTPEnabled  bool     `json:"otpEnabled"`
	OTPMethod   []string `json:"otpMethod"`
	CreatedAt   string   `json:"createdAt"`
}

func toUserResponse(u *authcore.User) userResponse {
	methods := make([]string, len(u.OTPMethods))
	for i, m := range u.OTPMethods {
		methods[i] = string(m)
	}
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		EmployeeID:  u.EmployeeID,
		Department:  u.Department,
		PhoneNumber: u.PhoneNumber,
		Designation: u.Designation,
		Role:        string(u.Role),
		Permissions: u.Permissions,
		IsActive:    u.IsActive,
		OTPEnabled:  u.OTPEnabled,
		OTPMethod:   methods,
		CreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

// writeError is the single boundary translator: classification decides
// the status code, and unrecognized errors get a generic body so store
// and driver failures never leak their shape to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := authcore.Classify(err)
	status := "fail"
	message := err.Error()

	var code int
	switch kind {
	case authcore.KindValidation:
		code = http.StatusBadRequest
	case authcore.KindAuthentication:
		code = http.StatusUnauthorized
	case authcore.KindAuthorization:
		code = http.StatusForbidden
	case authcore.KindNotFound:
		code = http.StatusNotFound
	case authcore.KindDelivery:
		code = http.StatusInternalServerError
		status = "error"
	default:
		code = http.StatusInternalServerError
		status = "error"
		message = "something went wrong"
		s.log.Error("internal error", "err", err)
	}

	s.writeJSON(w, code, map[string]string{
		"status":  status,
		"message": message,
	})
}

func decodeBody(r *http.Request, dst any) error {
	// Unknown fields are ignored, not rejected; in particular a client
	// sending "permissions" or "role" on a self-service route must not
	// see them applied.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &authcore.ValidationError{Reason: "invalid request body"}
	}
	return nil
}

// setSessionCookie mirrors the token into a cookie so same-origin
// browser clients need no header handling. Cross-origin clients use
// the bearer token from the response body instead; the CORS layer
// does not allow credentials.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.cookieTTL),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeSession(w http.ResponseWriter, code int, sess *authcore.Session) {
	s.setSessionCookie(w, sess.Token)
	s.writeJSON(w, code, map[string]any{
		"status": "success",
		"token":  sess.Token,
		"data":   map[string]any{"user": toUserResponse(sess.User)},
	})
}
