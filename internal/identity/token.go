package identity

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prysma/prysma/internal/platform/config"
	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

// tokenEnv holds raw env values before post-parse validation.
type tokenEnv struct {
	Issuer    string `env:"PRYSMA_AUTH_ISSUER"`
	Audience  string `env:"PRYSMA_AUTH_AUDIENCE"`
	PublicKey string `env:"PRYSMA_AUTH_PUBLIC_KEY"`
}

// TokenConfig defines how access tokens are verified.
type TokenConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// AccessTokenClaims captures validated access token claims.
type AccessTokenClaims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	UserID    string
	Email     string
}

// accessTokenClaims is the internal claims type used for JWT parsing.
type accessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Enabled reports whether bearer token verification is configured.
func (c TokenConfig) Enabled() bool {
	return c.Issuer != "" && c.Audience != "" && len(c.Key) == ed25519.PublicKeySize
}

// LoadTokenConfigFromEnv reads access token verification configuration.
//
// Leaving all three variables unset disables bearer tokens and the API runs
// session-only. Setting only some of them is a misconfiguration.
func LoadTokenConfigFromEnv(now func() time.Time) (TokenConfig, error) {
	var raw tokenEnv
	if err := config.ParseEnv(&raw); err != nil {
		return TokenConfig{}, fmt.Errorf("token config: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" && audience == "" && publicKey == "" {
		if now == nil {
			now = time.Now
		}
		return TokenConfig{Now: now}, nil
	}
	if issuer == "" {
		return TokenConfig{}, fmt.Errorf("PRYSMA_AUTH_ISSUER is required")
	}
	if audience == "" {
		return TokenConfig{}, fmt.Errorf("PRYSMA_AUTH_AUDIENCE is required")
	}
	if publicKey == "" {
		return TokenConfig{}, fmt.Errorf("PRYSMA_AUTH_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return TokenConfig{}, fmt.Errorf("decode auth public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return TokenConfig{}, fmt.Errorf("auth public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return TokenConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// ValidateAccessToken verifies a bearer token and returns its claims.
func ValidateAccessToken(token string, cfg TokenConfig) (AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.Enabled() {
		return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "bearer tokens are not enabled")
	}

	var parsed accessTokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return AccessTokenClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return AccessTokenClaims{}, apperrors.WithMetadata(
			apperrors.CodeUnauthenticated,
			"access token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return AccessTokenClaims{}, apperrors.WithMetadata(
			apperrors.CodeUnauthenticated,
			"access token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token sub is required")
	}
	if parsed.ExpiresAt == nil {
		return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return AccessTokenClaims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token not active yet")
		}
	}

	claims := AccessTokenClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		UserID:    parsed.Subject,
		Email:     strings.TrimSpace(parsed.Email),
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeUnauthenticated, "access token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeUnauthenticated, "access token alg is invalid")
	}
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return apperrors.New(apperrors.CodeUnauthenticated, "access token is malformed")
	}
	return apperrors.Wrap(apperrors.CodeUnauthenticated, "access token is invalid", err)
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(value)
}
