package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no profile exists for the user.
var ErrNotFound = errors.New("profile not found")

// Repository persists user profiles.
type Repository interface {
	FindByUser(ctx context.Context, userID string) (Profile, error)
	Create(ctx context.Context, profile Profile) error
	Update(ctx context.Context, profile Profile) error
	SetEmailVerified(ctx context.Context, userID string) error
	SetPhoneVerified(ctx context.Context, userID string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUser fetches the profile keyed by user identifier.
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) (Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, full_name, gender, dob, bio, avatar_url, social_links,
        email_verified, phone_verified, created_at FROM user_profiles WHERE user_id = $1`, uid)

	var (
		id                                 uuid.UUID
		fullName, gender, dob, bio, avatar *string
		links                              []byte
		createdAt                          time.Time
		p                                  Profile
	)
	err = row.Scan(&id, &fullName, &gender, &dob, &bio, &avatar, &links,
		&p.EmailVerified, &p.PhoneVerified, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.UserID = id.String()
	p.FullName = strVal(fullName)
	p.Gender = strVal(gender)
	p.DOB = strVal(dob)
	p.Bio = strVal(bio)
	p.AvatarURL = strVal(avatar)
	p.CreatedAt = createdAt.UTC()
	if len(links) > 0 {
		if err := json.Unmarshal(links, &p.SocialLinks); err != nil {
			return Profile{}, err
		}
	}
	return p, nil
}

// Create inserts a profile row for the user.
func (r *PostgresRepository) Create(ctx context.Context, profile Profile) error {
	uid, err := uuid.Parse(profile.UserID)
	if err != nil {
		return err
	}
	links, err := marshalLinks(profile.SocialLinks)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO user_profiles (user_id, full_name, gender, dob, bio, avatar_url, social_links, created_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		uid, profile.FullName, profile.Gender, profile.DOB, profile.Bio, profile.AvatarURL, links, time.Now().UTC())
	return err
}

// Update overwrites the mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, profile Profile) error {
	uid, err := uuid.Parse(profile.UserID)
	if err != nil {
		return err
	}
	links, err := marshalLinks(profile.SocialLinks)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE user_profiles SET full_name = NULLIF($2, ''), gender = NULLIF($3, ''),
        dob = NULLIF($4, ''), bio = NULLIF($5, ''), avatar_url = NULLIF($6, ''), social_links = $7
        WHERE user_id = $1`,
		uid, profile.FullName, profile.Gender, profile.DOB, profile.Bio, profile.AvatarURL, links)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEmailVerified flips the email verification flag.
func (r *PostgresRepository) SetEmailVerified(ctx context.Context, userID string) error {
	return r.setFlag(ctx, userID, `UPDATE user_profiles SET email_verified = TRUE WHERE user_id = $1`)
}

// SetPhoneVerified flips the phone verification flag.
func (r *PostgresRepository) SetPhoneVerified(ctx context.Context, userID string) error {
	return r.setFlag(ctx, userID, `UPDATE user_profiles SET phone_verified = TRUE WHERE user_id = $1`)
}

func (r *PostgresRepository) setFlag(ctx context.Context, userID, query string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalLinks(links map[string]string) ([]byte, error) {
	if len(links) == 0 {
		return nil, nil
	}
	return json.Marshal(links)
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
