package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/notify"
	"github.com/tendera/authcore/store/memory"
)

func newEngine(t *testing.T) (*authcore.Engine, *authcore.Session) {
	t.Helper()
	engine, err := authcore.New().
		WithTokenSecret([]byte("0123456789abcdef0123456789abcdef")).
		WithUserStore(memory.New()).
		WithNotifier(&notify.Capture{}).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	otpOff := false
	sess, err := engine.Register(context.Background(), authcore.RegisterInput{
		Name:        "Guard Tester",
		Email:       "guard@example.com",
		Password:    "s3cretpw",
		Role:        authcore.RoleAdmin,
		EmployeeID:  "EMP-0001",
		Department:  "IT",
		PhoneNumber: "+94770000000",
		Designation: "Engineer",
		OTPEnabled:  &otpOff,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return engine, sess
}

// echoIdentity writes the authenticated user's ID, proving the context
// carried the identity.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	user, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "no identity", http.StatusInternalServerError)
		return
	}
	w.Write([]byte(user.ID))
})

func TestProtectBearerHeader(t *testing.T) {
	engine, sess := newEngine(t)
	handler := Protect(engine)(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != sess.User.ID {
		t.Fatalf("identity %q, want %q", rec.Body.String(), sess.User.ID)
	}
}

func TestProtectCookieFallback(t *testing.T) {
	engine, sess := newEngine(t)
	handler := Protect(engine)(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestProtectHeaderBeatsCookie(t *testing.T) {
	engine, sess := newEngine(t)
	handler := Protect(engine)(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: header token should win over cookie", rec.Code)
	}
}

func TestProtectRejectsMissingToken(t *testing.T) {
	engine, _ := newEngine(t)
	handler := Protect(engine)(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("non-JSON 401 body: %v", err)
	}
	if body["status"] != "fail" {
		t.Fatalf("body %v", body)
	}
}

func TestProtectRejectsBadToken(t *testing.T) {
	engine, _ := newEngine(t)
	handler := Protect(engine)(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}
