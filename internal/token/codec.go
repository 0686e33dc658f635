// Package token encodes and decodes the signed, self-contained access tokens
// handed out at login. The server keeps no session state: everything needed to
// identify the caller travels inside the token.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSignatureInvalid is returned when the signature does not verify with the codec secret.
	// A token signed with another secret and a tampered token are indistinguishable.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrTokenExpired is returned when now >= exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when the token cannot be parsed into the expected claims.
	ErrTokenMalformed = errors.New("token malformed")
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Claims is the identity embedded in every token.
type Claims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a process-wide HMAC secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithIssuer sets the iss claim written on encode. Decode does not require it.
func WithIssuer(iss string) Option {
	return func(c *Codec) { c.issuer = iss }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a codec for secret. A non-positive ttl falls back to DefaultTTL.
func NewCodec(secret []byte, ttl time.Duration, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Codec{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime given to encoded tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode stamps claims with iat, exp = now + ttl and a fresh jti, and signs them.
// Caller-supplied registered claims are overwritten.
func (c *Codec) Encode(claims Claims) (string, error) {
	now := c.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    c.issuer,
		Subject:   claims.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature first and only then the expiry, so a forged
// token never reports ErrTokenExpired. On success the claims are returned unmodified.
func (c *Codec) Decode(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrSignatureInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.Username == "" || claims.Role == "" {
		return nil, ErrTokenMalformed
	}

	validator := jwt.NewValidator(jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return claims, nil
}
