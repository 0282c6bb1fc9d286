package authcore

import "context"

// GetUser returns one account without secret material.
func (e *Engine) GetUser(ctx context.Context, userID string) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	user, err := e.store.GetByID(ctx, userID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, e.storeErr("load user", err)
	}
	return user.StripSecrets(), nil
}

// ListUsers returns every account without secret material.
func (e *Engine) ListUsers(ctx context.Context) ([]*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	users, err := e.store.List(ctx)
	if err != nil {
		return nil, e.storeErr("list users", err)
	}
	out := make([]*User, len(users))
	for i, u := range users {
		out[i] = u.StripSecrets()
	}
	return out, nil
}

// UpdateProfile applies a self-service update. Only the whitelisted
// profile fields can change this way; role, permissions and the active
// flag are out of reach no matter what the request carried.
func (e *Engine) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.store.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, e.storeErr("load user", err)
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, invalidField("name", "required")
		}
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if !emailPattern.MatchString(email) {
			return nil, invalidField("email", "invalid format")
		}
		user.Email = email
	}
	if upd.Department != nil {
		user.Department = *upd.Department
	}
	if upd.PhoneNumber != nil {
		if !phonePattern.MatchString(*upd.PhoneNumber) {
			return nil, invalidField("phoneNumber", "invalid format")
		}
		user.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Designation != nil {
		user.Designation = *upd.Designation
	}

	if err := e.store.Save(ctx, user); err != nil {
		if Classify(err) == KindValidation {
			return nil, err
		}
		return nil, e.storeErr("save profile", err)
	}
	return user.StripSecrets(), nil
}

// AdminUpdateUser applies an administrative update. Changing the role
// recomputes the stored permission set from the role tables; there is
// no path that sets permissions directly.
func (e *Engine) AdminUpdateUser(ctx context.Context, userID string, upd AdminUpdate) (*User, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.store.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, e.storeErr("load user", err)
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, invalidField("name", "required")
		}
		user.Name = *upd.Name
	}
	if upd.Department != nil {
		user.Department = *upd.Department
	}
	if upd.Designation != nil {
		user.Designation = *upd.Designation
	}
	if upd.Role != nil {
		perms, ok := e.roles.Permissions(string(*upd.Role))
		if !ok {
			return nil, invalidField("role", "unknown role")
		}
		user.Role = *upd.Role
		user.Permissions = perms
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.OTPEnabled != nil {
		user.OTPEnabled = *upd.OTPEnabled
	}
	if upd.OTPMethods != nil {
		if err := upd.OTPMethods.Validate(); err != nil {
			return nil, invalidField("otpMethod", err.Error())
		}
		user.OTPMethods = upd.OTPMethods
	}

	if err := e.store.Save(ctx, user); err != nil {
		return nil, e.storeErr("save user", err)
	}
	e.log.Info("user updated by admin", "userId", user.ID)
	return user.StripSecrets(), nil
}

// DeleteUser removes an account. An administrator cannot delete their
// own account; deactivation is the way out for that.
func (e *Engine) DeleteUser(ctx context.Context, actorID, userID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if actorID != "" && actorID == userID {
		return ErrSelfDelete
	}
	if err := e.store.Delete(ctx, userID); err != nil {
		if Classify(err) == KindNotFound {
			return ErrUserNotFound
		}
		return e.storeErr("delete user", err)
	}
	e.log.Info("user deleted", "userId", userID, "actorId", actorID)
	return nil
}
