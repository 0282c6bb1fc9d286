// Package postgres implements authcore.UserStore over PostgreSQL via
// database/sql with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	authcore "github.com/tendera/authcore"
)

// DBTX is the subset of *sql.DB and *sql.Tx the store needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a PostgreSQL-backed user store.
type Store struct {
	db DBTX
}

// New returns a Store over the given connection or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

const userColumns = `id, name, email, employee_id, department, phone_number, designation,
	role, permissions, is_active, otp_enabled, otp_methods,
	password_hash, otp_code_hash, otp_expires,
	password_reset_hash, password_reset_expires, password_changed_at, created_at`

func (s *Store) Create(ctx context.Context, u *authcore.User) error {
	perms, methods, err := encodeLists(u)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19)`,
		u.ID, u.Name, u.Email, u.EmployeeID, u.Department, u.PhoneNumber, u.Designation,
		string(u.Role), perms, u.IsActive, u.OTPEnabled, methods,
		u.PasswordHash, nullBytes(u.OTPCodeHash), nullTime(u.OTPExpires),
		nullBytes(u.PasswordResetHash), nullTime(u.PasswordResetExpires),
		nullTime(u.PasswordChangedAt), u.CreatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*authcore.User, error) {
	u, err := s.GetByIDWithSecrets(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.StripSecrets(), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*authcore.User, error) {
	u, err := s.GetByEmailWithSecrets(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.StripSecrets(), nil
}

func (s *Store) GetByEmployeeID(ctx context.Context, employeeID string) (*authcore.User, error) {
	u, err := s.getBy(ctx, `employee_id = $1`, employeeID)
	if err != nil {
		return nil, err
	}
	return u.StripSecrets(), nil
}

func (s *Store) GetByIDWithSecrets(ctx context.Context, id string) (*authcore.User, error) {
	return s.getBy(ctx, `id = $1`, id)
}

func (s *Store) GetByEmailWithSecrets(ctx context.Context, email string) (*authcore.User, error) {
	return s.getBy(ctx, `email = lower($1)`, email)
}

// GetByResetTokenHash matches the stored hash and the deadline in a
// single predicate so there is no window between the two checks.
func (s *Store) GetByResetTokenHash(ctx context.Context, hash []byte, now time.Time) (*authcore.User, error) {
	if len(hash) == 0 {
		return nil, authcore.ErrUserNotFound
	}
	return s.getBy(ctx, `password_reset_hash = $1 AND password_reset_expires > $2`, hash, now)
}

func (s *Store) getBy(ctx context.Context, where string, args ...any) (*authcore.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *Store) Save(ctx context.Context, u *authcore.User) error {
	perms, methods, err := encodeLists(u)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			name = $2, email = lower($3), department = $4, phone_number = $5, designation = $6,
			role = $7, permissions = $8, is_active = $9, otp_enabled = $10, otp_methods = $11,
			password_hash = $12, otp_code_hash = $13, otp_expires = $14,
			password_reset_hash = $15, password_reset_expires = $16, password_changed_at = $17
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Department, u.PhoneNumber, u.Designation,
		string(u.Role), perms, u.IsActive, u.OTPEnabled, methods,
		u.PasswordHash, nullBytes(u.OTPCodeHash), nullTime(u.OTPExpires),
		nullBytes(u.PasswordResetHash), nullTime(u.PasswordResetExpires),
		nullTime(u.PasswordChangedAt))
	if err != nil {
		return mapPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*authcore.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*authcore.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*authcore.User, error) {
	var (
		u        authcore.User
		role     string
		perms    []byte
		methods  []byte
		otpExp   sql.NullTime
		resetExp sql.NullTime
		pwdChg   sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.Department, &u.PhoneNumber, &u.Designation,
		&role, &perms, &u.IsActive, &u.OTPEnabled, &methods,
		&u.PasswordHash, &u.OTPCodeHash, &otpExp,
		&u.PasswordResetHash, &resetExp, &pwdChg, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = authcore.Role(role)
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	if len(methods) > 0 {
		if err := json.Unmarshal(methods, &u.OTPMethods); err != nil {
			return nil, fmt.Errorf("decode otp methods: %w", err)
		}
	}
	u.OTPExpires = timeOrZero(otpExp)
	u.PasswordResetExpires = timeOrZero(resetExp)
	u.PasswordChangedAt = timeOrZero(pwdChg)
	return &u, nil
}

func encodeLists(u *authcore.User) (perms, methods []byte, err error) {
	perms, err = json.Marshal(u.Permissions)
	if err != nil {
		return nil, nil, fmt.Errorf("encode permissions: %w", err)
	}
	methods, err = json.Marshal(u.OTPMethods)
	if err != nil {
		return nil, nil, fmt.Errorf("encode otp methods: %w", err)
	}
	return perms, methods, nil
}

// mapPgError translates unique violations to the store-level duplicate
// errors; everything else passes through wrapped.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return authcore.ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "employee"):
			return authcore.ErrEmployeeIDTaken
		}
	}
	return fmt.Errorf("postgres: %w", err)
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

var _ authcore.UserStore = (*Store)(nil)
