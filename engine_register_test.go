package authcore_test

import (
	"context"
	"testing"

	authcore "github.com/tendera/authcore"
)

func TestRegisterIssuesImmediateSession(t *testing.T) {
	f := newFixture(t)

	sess, err := f.engine.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("no session token issued")
	}
	// No OTP on registration even though otpEnabled defaults to true.
	if len(f.capture.SMS())+len(f.capture.Emails()) != 0 {
		t.Fatal("registration attempted a delivery")
	}
}

func TestRegisterDerivesPermissionsFromRole(t *testing.T) {
	f := newFixture(t)

	sess, err := f.engine.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want, _ := f.engine.Roles().Permissions(string(authcore.RoleProcurementOfficer))
	if len(sess.User.Permissions) == 0 || len(sess.User.Permissions) != len(want) {
		t.Fatalf("permissions %v, want role set %v", sess.User.Permissions, want)
	}
}

func TestRegisterDefaults(t *testing.T) {
	f := newFixture(t)

	sess, err := f.engine.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u := sess.User
	if !u.IsActive || !u.OTPEnabled {
		t.Fatal("isActive and otpEnabled must default to true")
	}
	if len(u.OTPMethods) != 1 || u.OTPMethods[0] != authcore.ChannelSMS {
		t.Fatalf("otp methods %v, want default [sms]", u.OTPMethods)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*authcore.RegisterInput)
	}{
		{"missing name", func(in *authcore.RegisterInput) { in.Name = "" }},
		{"missing email", func(in *authcore.RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *authcore.RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *authcore.RegisterInput) { in.Password = "pw" }},
		{"missing employee id", func(in *authcore.RegisterInput) { in.EmployeeID = "" }},
		{"missing department", func(in *authcore.RegisterInput) { in.Department = "" }},
		{"malformed phone", func(in *authcore.RegisterInput) { in.PhoneNumber = "abc" }},
		{"missing designation", func(in *authcore.RegisterInput) { in.Designation = "" }},
		{"unknown role", func(in *authcore.RegisterInput) { in.Role = "superuser" }},
		{"bad otp method", func(in *authcore.RegisterInput) {
			in.OTPMethods = authcore.ChannelList{"pigeon"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := f.engine.Register(context.Background(), in)
			if authcore.Classify(err) != authcore.KindValidation {
				t.Fatalf("got %v, want a validation error", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, validRegistration(), false)

	in := validRegistration()
	in.EmployeeID = "EMP-9999"
	_, err := f.engine.Register(context.Background(), in)
	if authcore.Classify(err) != authcore.KindValidation {
		t.Fatalf("got %v, want a validation error for duplicate email", err)
	}
}

func TestRegisterDuplicateEmployeeID(t *testing.T) {
	f := newFixture(t)
	f.register(t, validRegistration(), false)

	in := validRegistration()
	in.Email = "other@example.com"
	_, err := f.engine.Register(context.Background(), in)
	if authcore.Classify(err) != authcore.KindValidation {
		t.Fatalf("got %v, want a validation error for duplicate employee id", err)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	in.Email = "  Asha@Example.COM "
	sess, err := f.engine.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Email != "asha@example.com" {
		t.Fatalf("stored email %q, want normalized", sess.User.Email)
	}
}
