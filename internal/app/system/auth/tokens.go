package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds, carried in the typ claim so an access token can never be
// replayed as a refresh token even if the secrets were shared.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"typ"`
	jwt.RegisteredClaims
}

// IssuerConfig holds the signing keys and lifetimes.
type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	cfg IssuerConfig
	now func() time.Time
}

func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt secrets must not be empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// Pair is an access/refresh token pair.
type Pair struct {
	Access  string
	Refresh string
}

// IssuePair signs a fresh access and refresh token for u.
func (i *Issuer) IssuePair(u User) (Pair, error) {
	access, err := i.IssueAccess(u)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(u, KindRefresh, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess signs an access token for u.
func (i *Issuer) IssueAccess(u User) (string, error) {
	return i.sign(u, KindAccess, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

func (i *Issuer) sign(u User, kind, secret string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return s, nil
}

// ParseAccess verifies an access token.
func (i *Issuer) ParseAccess(token string) (*Claims, error) {
	return i.parse(token, KindAccess, i.cfg.AccessSecret)
}

// ParseRefresh verifies a refresh token.
func (i *Issuer) ParseRefresh(token string) (*Claims, error) {
	return i.parse(token, KindRefresh, i.cfg.RefreshSecret)
}

func (i *Issuer) parse(token, kind, secret string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}
	return &c, nil
}
