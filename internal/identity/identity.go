package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

// ErrUnauthenticated indicates a credential that did not resolve to an identity.
var ErrUnauthenticated = apperrors.New(apperrors.CodeUnauthenticated, "credential did not resolve to an identity")

// ErrNotFound indicates a requested identity record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "identity not found")

// Identity represents an authenticated user record.
type Identity struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is a cookie-backed login session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CredentialKind identifies how a credential should be resolved.
type CredentialKind int

const (
	// CredentialUnspecified indicates an unusable credential.
	CredentialUnspecified CredentialKind = iota
	// CredentialBearer is a signed access token from an Authorization header.
	CredentialBearer
	// CredentialSession is a session ID from the session cookie.
	CredentialSession
	// CredentialOperator is a user ID asserted by a trusted operator surface.
	CredentialOperator
)

// Credential is an opaque caller credential awaiting verification.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// BearerCredential wraps a bearer access token.
func BearerCredential(token string) Credential {
	return Credential{Kind: CredentialBearer, Value: token}
}

// SessionCredential wraps a session cookie value.
func SessionCredential(sessionID string) Credential {
	return Credential{Kind: CredentialSession, Value: sessionID}
}

// OperatorCredential wraps a user ID asserted by admin tooling.
func OperatorCredential(userID string) Credential {
	return Credential{Kind: CredentialOperator, Value: userID}
}

// UserStore persists identity records.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (Identity, error)
	DeleteUser(ctx context.Context, userID string) (int64, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (Session, error)
	DeleteSessionsByUser(ctx context.Context, userID string) (int64, error)
}

// Verifier is the identity surface consumed by the deletion workflow.
type Verifier interface {
	Verify(ctx context.Context, credential Credential) (Identity, error)
	DeleteIdentity(ctx context.Context, userID string) error
}

// Service resolves credentials against the user and session stores.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   TokenConfig
	clock    func() time.Time
}

// NewService builds an identity service.
func NewService(users UserStore, sessions SessionStore, tokens TokenConfig) *Service {
	clock := tokens.Now
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		clock:    clock,
	}
}

// Verify resolves a credential to exactly one identity.
//
// Every failure path collapses to an unauthenticated error so callers cannot
// distinguish a bad token from a deleted user. Operator credentials are the
// exception: a missing target user reports not-found so admin tooling can
// surface a 404 instead of a misleading 401.
func (s *Service) Verify(ctx context.Context, credential Credential) (Identity, error) {
	if s == nil || s.users == nil {
		return Identity{}, errors.New("identity service is not configured")
	}

	value := strings.TrimSpace(credential.Value)
	if value == "" {
		return Identity{}, ErrUnauthenticated
	}

	switch credential.Kind {
	case CredentialBearer:
		claims, err := ValidateAccessToken(value, s.tokens)
		if err != nil {
			return Identity{}, err
		}
		found, err := s.users.GetUser(ctx, claims.UserID)
		if err != nil {
			return Identity{}, ErrUnauthenticated
		}
		return found, nil

	case CredentialSession:
		if s.sessions == nil {
			return Identity{}, errors.New("session store is not configured")
		}
		session, err := s.sessions.GetSession(ctx, value)
		if err != nil {
			return Identity{}, ErrUnauthenticated
		}
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.clock().UTC()) {
			return Identity{}, ErrUnauthenticated
		}
		found, err := s.users.GetUser(ctx, session.UserID)
		if err != nil {
			return Identity{}, ErrUnauthenticated
		}
		return found, nil

	case CredentialOperator:
		found, err := s.users.GetUser(ctx, value)
		if err != nil {
			if apperrors.GetCode(err) == apperrors.CodeNotFound {
				return Identity{}, ErrNotFound
			}
			return Identity{}, err
		}
		return found, nil

	default:
		return Identity{}, ErrUnauthenticated
	}
}

// DeleteIdentity removes the user row and every session that references it.
//
// Zero affected rows is success: a concurrent deletion that got there first
// must look identical to a successful delete.
func (s *Service) DeleteIdentity(ctx context.Context, userID string) error {
	if s == nil || s.users == nil {
		return errors.New("identity service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.New(apperrors.CodeIdentityDeletion, "user id is required")
	}

	if s.sessions != nil {
		if _, err := s.sessions.DeleteSessionsByUser(ctx, userID); err != nil {
			return apperrors.Wrap(apperrors.CodeIdentityDeletion, "delete sessions", err)
		}
	}
	if _, err := s.users.DeleteUser(ctx, userID); err != nil {
		return apperrors.Wrap(apperrors.CodeIdentityDeletion, "delete user", err)
	}
	return nil
}
