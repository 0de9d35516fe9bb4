package identity

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

const (
	testIssuer   = "https://auth.prysma.test"
	testAudience = "prysma-api"
)

func newSigningKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func signToken(t *testing.T, priv ed25519.PrivateKey, claims accessTokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(now time.Time) accessTokenClaims {
	return accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: "user@example.com",
	}
}

func TestValidateAccessToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub, priv := newSigningKey(t)
	cfg := TokenConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      pub,
		Now:      func() time.Time { return now },
	}

	token := signToken(t, priv, validClaims(now))
	claims, err := ValidateAccessToken(token, cfg)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email = %q, want %q", claims.Email, "user@example.com")
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub, priv := newSigningKey(t)
	cfg := TokenConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      pub,
		Now:      func() time.Time { return now.Add(2 * time.Hour) },
	}

	token := signToken(t, priv, validClaims(now))
	_, err := ValidateAccessToken(token, cfg)
	if apperrors.GetCode(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeUnauthenticated)
	}
}

func TestValidateAccessTokenIssuerMismatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub, priv := newSigningKey(t)
	cfg := TokenConfig{
		Issuer:   "https://other.example",
		Audience: testAudience,
		Key:      pub,
		Now:      func() time.Time { return now },
	}

	token := signToken(t, priv, validClaims(now))
	_, err := ValidateAccessToken(token, cfg)
	if apperrors.GetCode(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeUnauthenticated)
	}
}

func TestValidateAccessTokenWrongKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, priv := newSigningKey(t)
	otherPub, _ := newSigningKey(t)
	cfg := TokenConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      otherPub,
		Now:      func() time.Time { return now },
	}

	token := signToken(t, priv, validClaims(now))
	_, err := ValidateAccessToken(token, cfg)
	if apperrors.GetCode(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeUnauthenticated)
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	t.Parallel()

	pub, _ := newSigningKey(t)
	cfg := TokenConfig{
		Issuer:   testIssuer,
		Audience: testAudience,
		Key:      pub,
	}

	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := ValidateAccessToken(token, cfg); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestLoadTokenConfigFromEnvDisabledWhenUnset(t *testing.T) {
	t.Setenv("PRYSMA_AUTH_ISSUER", "")
	t.Setenv("PRYSMA_AUTH_AUDIENCE", "")
	t.Setenv("PRYSMA_AUTH_PUBLIC_KEY", "")

	cfg, err := LoadTokenConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load token config: %v", err)
	}
	if cfg.Enabled() {
		t.Fatal("expected bearer tokens disabled with empty env")
	}
}

func TestLoadTokenConfigFromEnvRejectsPartialConfig(t *testing.T) {
	t.Setenv("PRYSMA_AUTH_ISSUER", "prysma")
	t.Setenv("PRYSMA_AUTH_AUDIENCE", "")
	t.Setenv("PRYSMA_AUTH_PUBLIC_KEY", "")

	if _, err := LoadTokenConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for partial env")
	}
}
