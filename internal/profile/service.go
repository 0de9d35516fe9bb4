package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/platform/id"
)

var (
	// ErrNotFound indicates the requested profile row is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "profile not found")
	// ErrEmptyUsername indicates a missing username.
	ErrEmptyUsername = apperrors.New(apperrors.CodeProfileEmptyUsername, "username is required")
	// ErrInvalidUsername indicates a username that does not match the required format.
	ErrInvalidUsername = apperrors.New(apperrors.CodeProfileInvalidUsername, "username must be 3-32 lowercase alphanumeric, dot, dash, or underscore characters")
	// ErrUsernameTaken indicates another profile already owns the username.
	ErrUsernameTaken = apperrors.New(apperrors.CodeProfileUsernameTaken, "username is already taken")
)

// Store persists profile rows and their sections.
type Store interface {
	PutProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, userID string) (Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (Profile, error)
	PutSections(ctx context.Context, userID string, sections []Section) error
	DeleteProfile(ctx context.Context, userID string) (int64, error)
}

// SaveInput describes one profile upsert.
type SaveInput struct {
	UserID               string
	Username             string
	DisplayName          string
	Headline             string
	AvatarURL            string
	StripeCustomerID     string
	StripeSubscriptionID string
	Sections             []Section
}

// Service owns profile reads and writes.
type Service struct {
	store       Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService builds a profile service with production defaults.
func NewService(store Store) *Service {
	return &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// Save upserts the caller's profile. The first save creates the row; later
// saves keep CreatedAt and refresh UpdatedAt.
func (s *Service) Save(ctx context.Context, input SaveInput) (Profile, error) {
	if s == nil || s.store == nil {
		return Profile{}, errors.New("profile service is not configured")
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return Profile{}, apperrors.New(apperrors.CodeProfileEmptyUserID, "user id is required")
	}
	username := strings.TrimSpace(input.Username)
	if err := ValidateUsername(username); err != nil {
		return Profile{}, err
	}

	if existing, err := s.store.GetProfileByUsername(ctx, username); err == nil && existing.UserID != userID {
		return Profile{}, ErrUsernameTaken
	}

	sections, err := s.normalizeSections(input.Sections)
	if err != nil {
		return Profile{}, err
	}

	now := s.clock().UTC()
	result := Profile{
		UserID:               userID,
		Username:             username,
		DisplayName:          strings.TrimSpace(input.DisplayName),
		Headline:             strings.TrimSpace(input.Headline),
		AvatarURL:            strings.TrimSpace(input.AvatarURL),
		StripeCustomerID:     strings.TrimSpace(input.StripeCustomerID),
		StripeSubscriptionID: strings.TrimSpace(input.StripeSubscriptionID),
		Sections:             sections,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if existing, err := s.store.GetProfile(ctx, userID); err == nil {
		result.CreatedAt = existing.CreatedAt
	}

	if err := s.store.PutProfile(ctx, result); err != nil {
		return Profile{}, err
	}
	return result, nil
}

// Get returns the caller's own profile.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if s == nil || s.store == nil {
		return Profile{}, errors.New("profile service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, apperrors.New(apperrors.CodeProfileEmptyUserID, "user id is required")
	}
	return s.store.GetProfile(ctx, userID)
}

// PublicView resolves a public profile URL handle to its card.
func (s *Service) PublicView(ctx context.Context, username string) (Profile, error) {
	if s == nil || s.store == nil {
		return Profile{}, errors.New("profile service is not configured")
	}
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return Profile{}, err
	}
	found, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		return Profile{}, err
	}
	// Billing linkage never leaves the owner surface.
	found.StripeCustomerID = ""
	found.StripeSubscriptionID = ""
	return found, nil
}

// ReorderSections persists a drag-and-drop reorder as new section positions.
//
// orderedIDs must name every current section exactly once; anything else is
// rejected so a stale client cannot silently drop sections.
func (s *Service) ReorderSections(ctx context.Context, userID string, orderedIDs []string) error {
	if s == nil || s.store == nil {
		return errors.New("profile service is not configured")
	}
	current, err := s.store.GetProfile(ctx, strings.TrimSpace(userID))
	if err != nil {
		return err
	}

	if len(orderedIDs) != len(current.Sections) {
		return apperrors.New(apperrors.CodeProfileInvalidSection, "reorder must include every section")
	}
	byID := make(map[string]Section, len(current.Sections))
	for _, section := range current.Sections {
		byID[section.ID] = section
	}

	reordered := make([]Section, 0, len(orderedIDs))
	for position, sectionID := range orderedIDs {
		section, ok := byID[sectionID]
		if !ok {
			return apperrors.WithMetadata(apperrors.CodeProfileInvalidSection, "unknown section id", map[string]string{"SectionID": sectionID})
		}
		delete(byID, sectionID)
		section.Position = position
		reordered = append(reordered, section)
	}

	return s.store.PutSections(ctx, current.UserID, reordered)
}

// normalizeSections validates kinds, assigns IDs to new sections, and
// compacts positions into insertion order.
func (s *Service) normalizeSections(sections []Section) ([]Section, error) {
	if len(sections) == 0 {
		return nil, nil
	}
	result := make([]Section, 0, len(sections))
	for position, section := range sections {
		if !KnownSectionKind(section.Kind) {
			return nil, apperrors.WithMetadata(apperrors.CodeProfileInvalidSection, "unknown section kind", map[string]string{"Kind": string(section.Kind)})
		}
		if strings.TrimSpace(section.ID) == "" {
			generated, err := s.idGenerator()
			if err != nil {
				return nil, err
			}
			section.ID = generated
		}
		section.Title = strings.TrimSpace(section.Title)
		section.Position = position
		result = append(result, section)
	}
	return result, nil
}
