// Package analytics records and summarizes public profile visits.
package analytics

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/platform/id"
)

// recentWindow is the rolling window reported next to the all-time total.
const recentWindow = 30 * 24 * time.Hour

// ErrEmptyProfileID indicates a visit without an owning profile.
var ErrEmptyProfileID = apperrors.New(apperrors.CodeVisitEmptyProfileID, "profile user id is required")

// Visit is one append-only profile view event.
type Visit struct {
	ID            string
	ProfileUserID string
	Referrer      string
	Path          string
	VisitedAt     time.Time
}

// Summary aggregates visit counts for the owner dashboard.
type Summary struct {
	ProfileUserID string
	TotalVisits   int64
	RecentVisits  int64
	WindowStart   time.Time
	GeneratedAt   time.Time
}

// Store persists visit events.
type Store interface {
	PutVisit(ctx context.Context, visit Visit) error
	CountVisits(ctx context.Context, profileUserID string, since *time.Time) (int64, error)
	DeleteVisitsByUser(ctx context.Context, profileUserID string) (int64, error)
}

// RecordInput describes one incoming visit.
type RecordInput struct {
	ProfileUserID string
	Referrer      string
	Path          string
}

// Service owns visit recording and aggregation.
type Service struct {
	store       Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService builds an analytics service with production defaults.
func NewService(store Store) *Service {
	return &Service{
		store:       store,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// RecordVisit appends one visit event. Referrer and path are stored as given;
// the write path stays dumb so it can never block a page load on validation.
func (s *Service) RecordVisit(ctx context.Context, input RecordInput) (Visit, error) {
	if s == nil || s.store == nil {
		return Visit{}, errors.New("analytics service is not configured")
	}
	profileUserID := strings.TrimSpace(input.ProfileUserID)
	if profileUserID == "" {
		return Visit{}, ErrEmptyProfileID
	}

	visitID, err := s.idGenerator()
	if err != nil {
		return Visit{}, err
	}
	visit := Visit{
		ID:            visitID,
		ProfileUserID: profileUserID,
		Referrer:      strings.TrimSpace(input.Referrer),
		Path:          strings.TrimSpace(input.Path),
		VisitedAt:     s.clock().UTC(),
	}
	if err := s.store.PutVisit(ctx, visit); err != nil {
		return Visit{}, err
	}
	return visit, nil
}

// VisitSummary returns all-time and recent-window visit counts.
func (s *Service) VisitSummary(ctx context.Context, profileUserID string) (Summary, error) {
	if s == nil || s.store == nil {
		return Summary{}, errors.New("analytics service is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	if profileUserID == "" {
		return Summary{}, ErrEmptyProfileID
	}

	now := s.clock().UTC()
	total, err := s.store.CountVisits(ctx, profileUserID, nil)
	if err != nil {
		return Summary{}, err
	}
	windowStart := now.Add(-recentWindow)
	recent, err := s.store.CountVisits(ctx, profileUserID, &windowStart)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		ProfileUserID: profileUserID,
		TotalVisits:   total,
		RecentVisits:  recent,
		WindowStart:   windowStart,
		GeneratedAt:   now,
	}, nil
}
