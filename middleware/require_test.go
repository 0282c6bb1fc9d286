package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	authcore "github.com/tendera/authcore"
	"github.com/tendera/authcore/permission"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestAs(user *authcore.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		ctx := context.WithValue(req.Context(), identityContextKey{}, user)
		req = req.WithContext(ctx)
	}
	return req
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(permission.ManageUsers)(okHandler)

	admin := &authcore.User{Role: authcore.RoleAdmin, Permissions: []string{permission.ManageUsers}}
	bidder := &authcore.User{Role: authcore.RoleBidder, Permissions: []string{permission.SubmitBids}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(bidder))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bidder: status %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status %d, want 401", rec.Code)
	}
}

func TestRequireAnyPermission(t *testing.T) {
	handler := RequireAnyPermission(permission.ManageTenders, permission.ViewReports)(okHandler)

	officer := &authcore.User{Permissions: []string{permission.ViewReports}}
	bidder := &authcore.User{Permissions: []string{permission.SubmitBids}}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(officer))
	if rec.Code != http.StatusOK {
		t.Fatalf("officer: status %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(bidder))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bidder: status %d, want 403", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(authcore.RoleAdmin, authcore.RoleProcurementOfficer)(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(&authcore.User{Role: authcore.RoleProcurementOfficer}))
	if rec.Code != http.StatusOK {
		t.Fatalf("officer: status %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(&authcore.User{Role: authcore.RoleEvaluator}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("evaluator: status %d, want 403", rec.Code)
	}
}
