// Package testimonial manages quotes displayed on a profile card.
package testimonial

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/platform/id"
)

var (
	// ErrNotFound indicates a requested testimonial is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "testimonial not found")
	// ErrEmptyAuthor indicates a testimonial without an author name.
	ErrEmptyAuthor = apperrors.New(apperrors.CodeTestimonialEmptyAuthor, "author name is required")
	// ErrEmptyQuote indicates a testimonial without quote text.
	ErrEmptyQuote = apperrors.New(apperrors.CodeTestimonialEmptyQuote, "quote is required")
)

// Testimonial is one quote owned by a profile.
type Testimonial struct {
	ID            string
	ProfileUserID string
	AuthorName    string
	AuthorLink    string
	Quote         string
	CreatedAt     time.Time
}

// Store persists testimonial rows.
type Store interface {
	PutTestimonial(ctx context.Context, t Testimonial) error
	ListTestimonials(ctx context.Context, profileUserID string) ([]Testimonial, error)
	DeleteTestimonial(ctx context.Context, profileUserID string, testimonialID string) (int64, error)
	DeleteTestimonialsByUser(ctx context.Context, profileUserID string) (int64, error)
}

// CreateInput describes one new testimonial.
type CreateInput struct {
	ProfileUserID string
	AuthorName    string
	AuthorLink    string
	Quote         string
}

// Service owns testimonial reads and writes.
type Service struct {
	store       Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService builds a testimonial service with production defaults.
func NewService(store Store) *Service {
	return &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// Create stores one validated testimonial for the owner's profile.
func (s *Service) Create(ctx context.Context, input CreateInput) (Testimonial, error) {
	if s == nil || s.store == nil {
		return Testimonial{}, errors.New("testimonial service is not configured")
	}
	profileUserID := strings.TrimSpace(input.ProfileUserID)
	if profileUserID == "" {
		return Testimonial{}, apperrors.New(apperrors.CodeProfileEmptyUserID, "profile user id is required")
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return Testimonial{}, ErrEmptyAuthor
	}
	quote := strings.TrimSpace(input.Quote)
	if quote == "" {
		return Testimonial{}, ErrEmptyQuote
	}

	testimonialID, err := s.idGenerator()
	if err != nil {
		return Testimonial{}, err
	}
	result := Testimonial{
		ID:            testimonialID,
		ProfileUserID: profileUserID,
		AuthorName:    author,
		AuthorLink:    strings.TrimSpace(input.AuthorLink),
		Quote:         quote,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.store.PutTestimonial(ctx, result); err != nil {
		return Testimonial{}, err
	}
	return result, nil
}

// List returns every testimonial owned by a profile, newest first.
func (s *Service) List(ctx context.Context, profileUserID string) ([]Testimonial, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("testimonial service is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	if profileUserID == "" {
		return nil, apperrors.New(apperrors.CodeProfileEmptyUserID, "profile user id is required")
	}
	return s.store.ListTestimonials(ctx, profileUserID)
}

// Delete removes one owner-scoped testimonial. Deleting a missing row
// reports not-found so the UI can drop stale cards.
func (s *Service) Delete(ctx context.Context, profileUserID string, testimonialID string) error {
	if s == nil || s.store == nil {
		return errors.New("testimonial service is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	testimonialID = strings.TrimSpace(testimonialID)
	if profileUserID == "" || testimonialID == "" {
		return ErrNotFound
	}
	affected, err := s.store.DeleteTestimonial(ctx, profileUserID, testimonialID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
