package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every session-token failure mode: bad signature,
// malformed compact form, expiry, wrong algorithm. Callers must not surface
// finer detail than this.
var ErrInvalidToken = errors.New("invalid token")

// Manager issues and verifies signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a session token manager. The secret must be validated by
// configuration loading before the process starts.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the user and returns it with its expiry,
// fixed at issuance time plus the configured TTL.
func (m *Manager) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature and embedded expiry and returns the user
// identifier bound in the token. The store-side session check is separate and
// mandatory; a token passing Parse may still have been revoked.
func (m *Manager) Parse(tokenStr string) (string, error) {
	parsed, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// NewResetToken produces an opaque password-reset token: 32 random bytes,
// hex encoded.
func NewResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewOTP produces a 6-digit one-time code in the range 100000-999999. The
// range intentionally excludes leading zeros to match the published behavior.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
