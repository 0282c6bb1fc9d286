package authcore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Role is the closed role enumeration of the portal.
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleCommitteeMember    Role = "committee_member"
	RoleEvaluator          Role = "evaluator"
	RoleBidder             Role = "bidder"
	RoleComplaintManager   Role = "complaint_manager"
	RoleProjectManager     Role = "project_manager"
)

// Channel is an OTP delivery channel.
type Channel string

const (
	// ChannelEmail delivers the code by email.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers the code by SMS.
	ChannelSMS Channel = "sms"
)

// Valid reports whether c is a known delivery channel.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// ChannelList is a non-empty ordered list of delivery channels. The
// portal's wire format historically allowed either a single string or an
// array; the list form is the normalized internal representation, and
// the first element is the preferred channel.
type ChannelList []Channel

// UnmarshalJSON accepts either "sms" or ["email","sms"].
func (l *ChannelList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = ChannelList{Channel(single)}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("otpMethod must be a string or an array of strings")
	}
	out := make(ChannelList, 0, len(many))
	for _, m := range many {
		out = append(out, Channel(m))
	}
	*l = out
	return nil
}

// Validate rejects empty lists and unknown channel values.
func (l ChannelList) Validate() error {
	if len(l) == 0 {
		return errors.New("must not be empty")
	}
	for _, c := range l {
		if !c.Valid() {
			return errors.New("must contain only \"email\" or \"sms\"")
		}
	}
	return nil
}

// Preferred returns the first configured channel.
func (l ChannelList) Preferred() (Channel, bool) {
	if len(l) == 0 {
		return "", false
	}
	return l[0], true
}

// User is the portal account record. Secret-bearing fields
// (PasswordHash, OTP and reset state) are populated only by the
// WithSecrets store reads; default reads return them zeroed.
type User struct {
	ID          string
	Name        string
	Email       string
	EmployeeID  string
	Department  string
	PhoneNumber string
	Designation string
	Role        Role
	Permissions []string
	IsActive    bool
	OTPEnabled  bool
	OTPMethods  ChannelList

	PasswordHash string

	// OTP challenge state. Both fields are set and cleared together;
	// exactly one live challenge exists per user.
	OTPCodeHash []byte
	OTPExpires  time.Time

	// Password-reset challenge state, paired like the OTP fields.
	PasswordResetHash    []byte
	PasswordResetExpires time.Time

	// PasswordChangedAt is set whenever the credential hash changes after
	// creation; tokens issued before it are rejected.
	PasswordChangedAt time.Time

	CreatedAt time.Time
}

// HasPermission reports whether the denormalized permission set contains
// name. Pure predicate, never consults the role.
func (u *User) HasPermission(name string) bool {
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the user holds at least one of names.
func (u *User) HasAnyPermission(names ...string) bool {
	for _, n := range names {
		if u.HasPermission(n) {
			return true
		}
	}
	return false
}

// OTPChallengeOpen reports whether an OTP challenge is currently stored.
func (u *User) OTPChallengeOpen() bool {
	return len(u.OTPCodeHash) > 0 || !u.OTPExpires.IsZero()
}

// Clone returns a deep copy of the record.
func (u *User) Clone() *User {
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	c.OTPMethods = append(ChannelList(nil), u.OTPMethods...)
	c.OTPCodeHash = append([]byte(nil), u.OTPCodeHash...)
	c.PasswordResetHash = append([]byte(nil), u.PasswordResetHash...)
	return &c
}

// StripSecrets returns a copy with credential, OTP, and reset fields
// zeroed, matching what default store reads expose.
func (u *User) StripSecrets() *User {
	c := u.Clone()
	c.PasswordHash = ""
	c.OTPCodeHash = nil
	c.OTPExpires = time.Time{}
	c.PasswordResetHash = nil
	c.PasswordResetExpires = time.Time{}
	return c
}

// UserStore is the persistence contract the engine consumes. Default
// reads exclude secret fields; the WithSecrets variants fetch them
// explicitly. Implementations return ErrUserNotFound, ErrEmailTaken,
// and ErrEmployeeIDTaken as appropriate.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*User, error)
	GetByIDWithSecrets(ctx context.Context, id string) (*User, error)
	GetByEmailWithSecrets(ctx context.Context, email string) (*User, error)

	// GetByResetTokenHash resolves a user whose stored reset-token hash
	// equals hash AND whose reset expiry is after now, as one atomic
	// condition. Returns ErrUserNotFound when no record matches both.
	GetByResetTokenHash(ctx context.Context, hash []byte, now time.Time) (*User, error)

	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*User, error)
}

// Notifier delivers out-of-band messages. Both methods may fail;
// failures are surfaced to the engine and never swallowed.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) error
}

// Logger is the injected logging dependency. The engine never constructs
// its own logger; the process entry point passes one in so tests can
// substitute a no-op or capturing implementation.
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

// Session is a fully established authentication: a signed token plus the
// secret-stripped user it identifies.
type Session struct {
	Token string
	User  *User
}

// Challenge indicates an OTP is pending: the login succeeded on
// credentials but the session is not yet established.
type Challenge struct {
	UserID  string
	Channel Channel
}

// LoginResult carries exactly one of Session or Challenge.
type LoginResult struct {
	Session   *Session
	Challenge *Challenge
}

// RegisterInput is the input for Engine.Register. IsActive and
// OTPEnabled default to true when nil. Permissions are never accepted
// here; they are derived from Role.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        Role
	EmployeeID  string
	Department  string
	PhoneNumber string
	Designation string
	OTPMethods  ChannelList
	IsActive    *bool
	OTPEnabled  *bool
}

// ProfileUpdate is the self-service field whitelist. Role, permissions,
// active flag, and OTP settings are deliberately absent.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Department  *string
	PhoneNumber *string
	Designation *string
}

// AdminUpdate is the administrator's update surface. Changing Role
// recomputes the stored permission set; a raw permission list is never
// accepted from the client.
type AdminUpdate struct {
	Name        *string
	Department  *string
	Designation *string
	Role        *Role
	IsActive    *bool
	OTPEnabled  *bool
	OTPMethods  ChannelList
}
