package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var epoch = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func newTestCodec(t *testing.T, now *time.Time) *Codec {
	t.Helper()
	c, err := NewCodec([]byte("test-secret"), time.Hour, WithClock(fixedClock(now)), WithIssuer("blog-test"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	now := epoch
	c := newTestCodec(t, &now)

	raw, err := c.Encode(Claims{UserID: 1, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	claims, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID != 1 || claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
	if !claims.IssuedAt.Time.Equal(epoch) || !claims.ExpiresAt.Time.Equal(epoch.Add(time.Hour)) {
		t.Errorf("unexpected iat/exp: %v %v", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestCodec_Expiry(t *testing.T) {
	now := epoch
	c := newTestCodec(t, &now)
	raw, err := c.Encode(Claims{UserID: 2, Username: "autor", Role: "author"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"just before expiry", epoch.Add(time.Hour - time.Second), nil},
		{"exactly at expiry", epoch.Add(time.Hour), ErrTokenExpired},
		{"long after expiry", epoch.Add(48 * time.Hour), ErrTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			_, err := c.Decode(raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode at %v: got %v, want %v", tt.at, err, tt.wantErr)
			}
		})
	}
}

func TestCodec_FlippedSignature(t *testing.T) {
	now := epoch
	c := newTestCodec(t, &now)
	raw, err := c.Encode(Claims{UserID: 1, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip a character in the middle of the signature segment; the last
	// character may only carry padding bits.
	i := strings.LastIndex(raw, ".") + 10
	b := []byte(raw)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}

	_, err = c.Decode(string(b))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("got %v, want ErrSignatureInvalid", err)
	}
}

// An HS256 signature is 32 bytes, so the last base64url character carries two
// unused low bits. Only the canonical encoding may decode.
func TestCodec_RejectsNonCanonicalSignature(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	now := epoch
	c := newTestCodec(t, &now)
	raw, err := c.Encode(Claims{UserID: 1, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := c.Decode(raw); err != nil {
		t.Fatalf("canonical token rejected: %v", err)
	}

	last := strings.IndexByte(alphabet, raw[len(raw)-1])
	for _, bits := range []int{1, 2, 3} {
		variant := raw[:len(raw)-1] + string(alphabet[last^bits])
		if _, err := c.Decode(variant); err == nil {
			t.Errorf("variant %q accepted", variant[len(variant)-4:])
		}
	}
}

func TestCodec_ExpiredForgeryReportsSignature(t *testing.T) {
	now := epoch
	other, err := NewCodec([]byte("other-secret"), time.Hour, WithClock(fixedClock(&now)))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	raw, err := other.Encode(Claims{UserID: 1, Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	now = epoch.Add(72 * time.Hour)
	c := newTestCodec(t, &now)
	if _, err := c.Decode(raw); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("got %v, want ErrSignatureInvalid", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	now := epoch
	c := newTestCodec(t, &now)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:         "ghost",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "ghost", Role: "admin"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	for _, raw := range []string{"", "not-a-token", "a.b.c", noRole, noExp} {
		if _, err := c.Decode(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode(%q): got %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestCodec_RejectsNoneAlgorithm(t *testing.T) {
	now := epoch
	c := newTestCodec(t, &now)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Username:         "admin",
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Decode(raw); err == nil {
		t.Fatal("alg=none token decoded")
	}
}

func TestNewCodec_EmptySecret(t *testing.T) {
	if _, err := NewCodec(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	c, err := NewCodec([]byte("x"), 0)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL: got %v, want %v", c.TTL(), DefaultTTL)
	}
}
