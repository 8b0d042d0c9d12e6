package passwordreset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the token does not exist, was already redeemed, or
// has expired. The three cases are indistinguishable to callers.
var ErrNotFound = errors.New("invalid or expired reset token")

// Repository persists password-reset requests.
type Repository interface {
	Create(ctx context.Context, req ResetRequest) error
	// FindValid is a read-only probe for an unused, unexpired token.
	FindValid(ctx context.Context, token string) (ResetRequest, error)
	// Redeem atomically marks an unused, unexpired token as used and returns
	// it. Of two concurrent redemptions exactly one succeeds; the loser gets
	// ErrNotFound.
	Redeem(ctx context.Context, token string) (ResetRequest, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed reset-request repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new reset request. Prior requests for the same user are
// left untouched.
func (r *PostgresRepository) Create(ctx context.Context, req ResetRequest) error {
	resetID, err := uuid.Parse(req.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO password_resets (reset_id, user_id, reset_token, expires_at, is_used, created_at)
        VALUES ($1, $2, $3, $4, FALSE, $5)`,
		resetID, userID, req.Token, req.ExpiresAt.UTC(), req.CreatedAt.UTC())
	return err
}

// FindValid fetches the request without mutating it.
func (r *PostgresRepository) FindValid(ctx context.Context, token string) (ResetRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT reset_id, user_id, reset_token, expires_at, is_used, created_at
        FROM password_resets WHERE reset_token = $1 AND is_used = FALSE AND expires_at > $2`,
		token, time.Now().UTC())
	return scanRequest(row)
}

// Redeem is a single conditional update so two concurrent calls with the same
// token cannot both succeed.
func (r *PostgresRepository) Redeem(ctx context.Context, token string) (ResetRequest, error) {
	row := r.db.QueryRow(ctx, `UPDATE password_resets SET is_used = TRUE
        WHERE reset_token = $1 AND is_used = FALSE AND expires_at > $2
        RETURNING reset_id, user_id, reset_token, expires_at, is_used, created_at`,
		token, time.Now().UTC())
	return scanRequest(row)
}

func scanRequest(row pgx.Row) (ResetRequest, error) {
	var (
		resetID, userID      uuid.UUID
		expiresAt, createdAt time.Time
		req                  ResetRequest
	)
	err := row.Scan(&resetID, &userID, &req.Token, &expiresAt, &req.Used, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ResetRequest{}, ErrNotFound
		}
		return ResetRequest{}, err
	}
	req.ID = resetID.String()
	req.UserID = userID.String()
	req.ExpiresAt = expiresAt.UTC()
	req.CreatedAt = createdAt.UTC()
	return req, nil
}
