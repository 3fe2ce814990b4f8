// Package auth issues and validates the signed session tokens the HTTP API
// uses to identify a profile.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/abhisek/skillforge/internal/profile"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is used when a service is created without a lifetime.
const DefaultTTL = 24 * time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims identifies the profile a session acts for. Subject carries the
// profile key.
type Claims struct {
	Profile string `json:"profile"`

	jwtlib.RegisteredClaims
}

// Key returns the storage key of the profile.
func (c Claims) Key() string {
	if c.Subject != "" {
		return c.Subject
	}
	return profile.Key(c.Profile)
}

// Service issues and validates session tokens.
type Service interface {
	Issue(profileName string) (token string, expiresAt time.Time, err error)
	Validate(token string) (Claims, error)
}

// HMACService signs tokens with HS256.
type HMACService struct {
	secret []byte
	ttl    time.Duration
	issuer string

	now func() time.Time
}

// NewHMACService creates a service. A zero ttl means DefaultTTL.
func NewHMACService(secret string, ttl time.Duration) *HMACService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HMACService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "skillforge",
		now:    time.Now,
	}
}

// RandomSecret returns a hex secret for servers started without one.
// Tokens signed with it do not survive a restart.
func RandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (s *HMACService) Issue(profileName string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrTokenInvalid
	}
	now := s.now().UTC()
	exp := now.Add(s.ttl)

	p := profile.New(profileName)
	c := Claims{
		Profile: p.Name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   p.Key(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(exp),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *HMACService) Validate(tokenString string) (Claims, error) {
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(s.issuer),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}
