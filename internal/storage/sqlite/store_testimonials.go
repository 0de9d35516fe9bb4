package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/testimonial"
)

// PutTestimonial persists one testimonial row.
func (s *Store) PutTestimonial(ctx context.Context, t testimonial.Testimonial) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	testimonialID := strings.TrimSpace(t.ID)
	profileUserID := strings.TrimSpace(t.ProfileUserID)
	if testimonialID == "" {
		return fmt.Errorf("testimonial id is required")
	}
	if profileUserID == "" {
		return fmt.Errorf("profile user id is required")
	}
	createdAt := t.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO testimonials (id, profile_user_id, author_name, author_link, quote, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		testimonialID,
		profileUserID,
		t.AuthorName,
		t.AuthorLink,
		t.Quote,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("put testimonial: %w", err)
	}
	return nil
}

// ListTestimonials returns every testimonial owned by one profile, newest first.
func (s *Store) ListTestimonials(ctx context.Context, profileUserID string) ([]testimonial.Testimonial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	if profileUserID == "" {
		return nil, fmt.Errorf("profile user id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, profile_user_id, author_name, author_link, quote, created_at
		   FROM testimonials
		  WHERE profile_user_id = ?
		  ORDER BY created_at DESC, id DESC`,
		profileUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	var results []testimonial.Testimonial
	for rows.Next() {
		var t testimonial.Testimonial
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.ProfileUserID, &t.AuthorName, &t.AuthorLink, &t.Quote, &createdAt); err != nil {
			return nil, fmt.Errorf("list testimonials: %w", err)
		}
		t.CreatedAt = fromMillis(createdAt)
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return results, nil
}

// DeleteTestimonial removes one testimonial scoped to its owner.
func (s *Store) DeleteTestimonial(ctx context.Context, profileUserID string, testimonialID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	profileUserID = strings.TrimSpace(profileUserID)
	testimonialID = strings.TrimSpace(testimonialID)
	if profileUserID == "" {
		return 0, fmt.Errorf("profile user id is required")
	}
	if testimonialID == "" {
		return 0, fmt.Errorf("testimonial id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM testimonials WHERE id = ? AND profile_user_id = ?`,
		testimonialID,
		profileUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete testimonial: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete testimonial rows affected: %w", err)
	}
	return affected, nil
}

// DeleteTestimonialsByUser removes every testimonial owned by one profile.
// Zero rows is not an error.
func (s *Store) DeleteTestimonialsByUser(ctx context.Context, profileUserID string) (int64, error) {
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
		`DELETE FROM testimonials WHERE profile_user_id = ?`,
		profileUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete testimonials: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete testimonials rows affected: %w", err)
	}
	return affected, nil
}

var _ testimonial.Store = (*Store)(nil)
