package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/analytics"
)

// PutVisit appends one visit event.
func (s *Store) PutVisit(ctx context.Context, visit analytics.Visit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	visitID := strings.TrimSpace(visit.ID)
	profileUserID := strings.TrimSpace(visit.ProfileUserID)
	if visitID == "" {
		return fmt.Errorf("visit id is required")
	}
	if profileUserID == "" {
		return fmt.Errorf("profile user id is required")
	}
	visitedAt := visit.VisitedAt.UTC()
	if visitedAt.IsZero() {
		visitedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO analytics_events (id, profile_user_id, referrer, path, visited_at)
		 VALUES (?, ?, ?, ?, ?)`,
		visitID,
		profileUserID,
		visit.Referrer,
		visit.Path,
		toMillis(visitedAt),
	)
	if err != nil {
		return fmt.Errorf("put visit: %w", err)
	}
	return nil
}

// CountVisits counts visit events for one profile, optionally since a cutoff.
func (s *Store) CountVisits(ctx context.Context, profileUserID string, since *time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	if profileUserID == "" {
		return 0, fmt.Errorf("profile user id is required")
	}

	var count int64
	var err error
	if since == nil {
		err = s.sqlDB.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM analytics_events WHERE profile_user_id = ?`,
			profileUserID,
		).Scan(&count)
	} else {
		err = s.sqlDB.QueryRowContext(
			ctx,
			`SELECT COUNT(*) FROM analytics_events WHERE profile_user_id = ? AND visited_at >= ?`,
			profileUserID,
			toMillis(*since),
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return count, nil
}

// DeleteVisitsByUser removes every visit event owned by one profile.
// Zero rows is not an error.
func (s *Store) DeleteVisitsByUser(ctx context.Context, profileUserID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	if profileUserID == "" {
		return 0, fmt.Errorf("profile user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM analytics_events WHERE profile_user_id = ?`,
		profileUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete visits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete visits rows affected: %w", err)
	}
	return affected, nil
}

var _ analytics.Store = (*Store)(nil)
