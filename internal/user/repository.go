package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate indicates the email or phone number is already registered.
	ErrDuplicate = errors.New("user already exists")
)

// Repository persists user credential records. Session, OTP and password
// mutations are single statements so concurrent operations on one user
// serialize at the row.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)

	UpdateSession(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearSession(ctx context.Context, id string) error

	UpdateOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	// ConsumeOTP clears the stored OTP iff it matches code and is unexpired,
	// reporting whether the swap happened. A failed consume leaves the stored
	// pair untouched.
	ConsumeOTP(ctx context.Context, id, code string) (bool, error)

	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	UpdatePhone(ctx context.Context, id, phone string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `user_id, email, phone_number, role, status, password_hash,
    sso_provider, sso_uid, session_token, session_expires_at,
    otp_code, otp_expires_at, last_login_at, created_at`

// Create inserts a new user record. Uniqueness violations on email or phone
// surface as ErrDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (user_id, email, phone_number, role, status, password_hash, sso_provider, sso_uid, created_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)`,
		userID, user.Email, user.PhoneNumber, user.Role, user.Status, nilIfEmpty(user.PasswordHash),
		user.SSOProvider, user.SSOUID, user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (User, error) {
	row := r.db.QueryRow(ctx, query, arg)

	var (
		id                           uuid.UUID
		email, phone, ssoProv, ssoID *string
		sessionTok, otpCode          *string
		sessionExp, otpExp, lastLog  *time.Time
		hash                         []byte
		createdAt                    time.Time
		u                            User
	)
	err := row.Scan(&id, &email, &phone, &u.Role, &u.Status, &hash,
		&ssoProv, &ssoID, &sessionTok, &sessionExp, &otpCode, &otpExp, &lastLog, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	u.ID = id.String()
	u.Email = deref(email)
	u.PhoneNumber = deref(phone)
	u.PasswordHash = hash
	u.SSOProvider = deref(ssoProv)
	u.SSOUID = deref(ssoID)
	u.SessionToken = deref(sessionTok)
	u.SessionExpiresAt = derefTime(sessionExp)
	u.OTPCode = deref(otpCode)
	u.OTPExpiresAt = derefTime(otpExp)
	u.LastLoginAt = derefTime(lastLog)
	u.CreatedAt = createdAt.UTC()
	return u, nil
}

// UpdateSession stores a fresh session pair, replacing whatever was live.
func (r *PostgresRepository) UpdateSession(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET session_token = $2, session_expires_at = $3 WHERE user_id = $1`,
		token, expiresAt.UTC())
}

// ClearSession drops the stored session pair.
func (r *PostgresRepository) ClearSession(ctx context.Context, id string) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET session_token = NULL, session_expires_at = NULL WHERE user_id = $1`)
}

// UpdateOTP stores a fresh OTP pair, replacing any pending one.
func (r *PostgresRepository) UpdateOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET otp_code = $2, otp_expires_at = $3 WHERE user_id = $1`,
		code, expiresAt.UTC())
}

// ConsumeOTP is a single conditional update: the stored pair is cleared only
// when the code matches and has not expired.
func (r *PostgresRepository) ConsumeOTP(ctx context.Context, id, code string) (bool, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET otp_code = NULL, otp_expires_at = NULL
        WHERE user_id = $1 AND otp_code = $2 AND otp_expires_at > $3`,
		userID, code, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// UpdateLastLogin stamps the login time.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET last_login_at = $2 WHERE user_id = $1`, time.Now().UTC())
}

// UpdatePassword overwrites the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET password_hash = $2 WHERE user_id = $1`, hash)
}

// UpdatePhone changes the stored phone number.
func (r *PostgresRepository) UpdatePhone(ctx context.Context, id, phone string) error {
	err := r.updateByID(ctx, id,
		`UPDATE users SET phone_number = NULLIF($2, '') WHERE user_id = $1`, phone)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// UpdateStatus changes the account status. Only active accounts may
// authenticate; the gate itself lives in the auth service.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateByID(ctx, id,
		`UPDATE users SET status = $2 WHERE user_id = $1`, status)
}

func (r *PostgresRepository) updateByID(ctx context.Context, id, query string, args ...any) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
