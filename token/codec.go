// Package token signs and parses HS256 access tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest HS256 signing key accepted.
const MinKeyLength = 32

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrInvalidAudience is returned when the token audience is invalid
	ErrInvalidAudience = errors.New("invalid audience")

	// ErrMalformedToken is returned when the token cannot be decoded at all
	ErrMalformedToken = errors.New("malformed token")

	// ErrReservedClaim is returned by Encode for claims named exp, iat, nbf, iss or aud
	ErrReservedClaim = errors.New("reserved claim type")

	// ErrWeakKey is returned by NewCodec for short signing keys
	ErrWeakKey = fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)
)

// Config holds the signing parameters.
type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
	Duration   time.Duration
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec encodes and decodes access tokens with a shared secret.
type Codec struct {
	key      []byte
	issuer   string
	audience string
	duration time.Duration
	now      func() time.Time
}

// NewCodec validates cfg and returns a Codec.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if len(cfg.SigningKey) < MinKeyLength {
		return nil, ErrWeakKey
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("audience is required")
	}
	if cfg.Duration <= 0 {
		return nil, errors.New("token duration must be positive")
	}

	c := &Codec{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		duration: cfg.Duration,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Duration is the lifetime given to tokens minted by Issue.
func (c *Codec) Duration() time.Duration {
	return c.duration
}

// Issue encodes claims with an expiry of now plus the configured duration.
func (c *Codec) Issue(claims []Claim) (string, error) {
	return c.Encode(claims, c.now().Add(c.duration))
}

// Encode signs claims with the configured issuer and audience.
func (c *Codec) Encode(claims []Claim, expiresAt time.Time) (string, error) {
	for _, cl := range claims {
		if IsReserved(cl.Type) {
			return "", fmt.Errorf("%w: %s", ErrReservedClaim, cl.Type)
		}
	}

	p := &payload{
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Claims:    append([]Claim(nil), claims...),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeUnverified reads the claims without checking signature or expiry.
// Only use the result to look up who a token claims to belong to.
func (c *Codec) DecodeUnverified(raw string) (*UnverifiedClaims, error) {
	p := &payload{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	u := &UnverifiedClaims{claims: p.Claims}
	if p.ExpiresAt != nil {
		u.expiresAt = p.ExpiresAt.Time
	}
	return u, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry.
func (c *Codec) Verify(raw string) (*VerifiedClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	p := &payload{}
	tok, err := parser.ParseWithClaims(raw, p, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrInvalidIssuer
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrInvalidAudience
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return newVerifiedClaims(p), nil
}
