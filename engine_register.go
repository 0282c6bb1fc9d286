package authcore

import (
	"context"

	"github.com/google/uuid"
)

// Register creates a user and immediately issues a session token;
// registration never requires an OTP. The stored permission set is
// derived from the role, never accepted from the caller.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	in.Email = normalizeEmail(in.Email)
	if err := e.validateRegister(in); err != nil {
		return nil, err
	}

	perms, ok := e.roles.Permissions(string(in.Role))
	if !ok {
		return nil, invalidField("role", "unknown role")
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return nil, invalidField("password", err.Error())
	}

	methods := in.OTPMethods
	if len(methods) == 0 {
		methods = ChannelList{e.config.OTP.DefaultChannel}
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		EmployeeID:   in.EmployeeID,
		Department:   in.Department,
		PhoneNumber:  in.PhoneNumber,
		Designation:  in.Designation,
		Role:         in.Role,
		Permissions:  perms,
		IsActive:     boolOrDefault(in.IsActive, true),
		OTPEnabled:   boolOrDefault(in.OTPEnabled, true),
		OTPMethods:   methods,
		PasswordHash: hash,
		CreatedAt:    e.now(),
	}

	if err := e.store.Create(ctx, user); err != nil {
		switch Classify(err) {
		case KindValidation:
			return nil, err
		default:
			return nil, e.storeErr("create user", err)
		}
	}

	e.log.Info("user registered", "userId", user.ID, "role", user.Role)
	return e.issueSession(user)
}

func (e *Engine) validateRegister(in RegisterInput) error {
	switch {
	case in.Name == "":
		return invalidField("name", "required")
	case in.Email == "":
		return invalidField("email", "required")
	case !emailPattern.MatchString(in.Email):
		return invalidField("email", "invalid format")
	case len(in.Password) < 6:
		return invalidField("password", "must be at least 6 characters")
	case in.EmployeeID == "":
		return invalidField("employeeId", "required")
	case in.Department == "":
		return invalidField("department", "required")
	case in.PhoneNumber == "":
		return invalidField("phoneNumber", "required")
	case !phonePattern.MatchString(in.PhoneNumber):
		return invalidField("phoneNumber", "invalid format")
	case in.Designation == "":
		return invalidField("designation", "required")
	}

	if in.OTPMethods != nil {
		if err := in.OTPMethods.Validate(); err != nil {
			return invalidField("otpMethod", err.Error())
		}
	}
	return nil
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
