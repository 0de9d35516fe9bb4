package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/profile"
)

// PutProfile upserts one profile row and replaces its sections atomically.
func (s *Store) PutProfile(ctx context.Context, p profile.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID := strings.TrimSpace(p.UserID)
	username := strings.TrimSpace(p.Username)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}
	createdAt := p.CreatedAt.UTC()
	updatedAt := p.UpdatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put profile: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO profiles (
		   user_id, username, display_name, headline, avatar_url,
		   stripe_customer_id, stripe_subscription_id, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   username = excluded.username,
		   display_name = excluded.display_name,
		   headline = excluded.headline,
		   avatar_url = excluded.avatar_url,
		   stripe_customer_id = excluded.stripe_customer_id,
		   stripe_subscription_id = excluded.stripe_subscription_id,
		   updated_at = excluded.updated_at`,
		userID,
		username,
		p.DisplayName,
		p.Headline,
		p.AvatarURL,
		p.StripeCustomerID,
		p.StripeSubscriptionID,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "profiles.username") {
			return profile.ErrUsernameTaken
		}
		return fmt.Errorf("put profile: %w", err)
	}

	if err := replaceSections(ctx, tx, userID, p.Sections); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put profile: %w", err)
	}
	return nil
}

// GetProfile returns one profile with ordered sections by user ID.
func (s *Store) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return profile.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return profile.Profile{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return profile.Profile{}, fmt.Errorf("user id is required")
	}
	return s.getProfileWhere(ctx, "user_id", userID)
}

// GetProfileByUsername returns one profile with ordered sections by handle.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return profile.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return profile.Profile{}, fmt.Errorf("storage is not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return profile.Profile{}, fmt.Errorf("username is required")
	}
	return s.getProfileWhere(ctx, "username", username)
}

func (s *Store) getProfileWhere(ctx context.Context, column, value string) (profile.Profile, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, username, display_name, headline, avatar_url,
		        stripe_customer_id, stripe_subscription_id, created_at, updated_at
		   FROM profiles
		  WHERE `+column+` = ?`,
		value,
	)

	var p profile.Profile
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.Headline,
		&p.AvatarURL,
		&p.StripeCustomerID,
		&p.StripeSubscriptionID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)

	sections, err := s.listSections(ctx, p.UserID)
	if err != nil {
		return profile.Profile{}, err
	}
	p.Sections = sections
	return p, nil
}

// PutSections replaces the section list for one profile.
func (s *Store) PutSections(ctx context.Context, userID string, sections []profile.Section) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put sections: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceSections(ctx, tx, userID, sections); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put sections: %w", err)
	}
	return nil
}

// DeleteProfile removes one profile row and returns the affected-row count.
// Sections cascade; zero rows is not an error.
func (s *Store) DeleteProfile(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete profile rows affected: %w", err)
	}
	return affected, nil
}

func replaceSections(ctx context.Context, tx *sql.Tx, userID string, sections []profile.Section) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_sections WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}
	for _, section := range sections {
		sectionID := strings.TrimSpace(section.ID)
		if sectionID == "" {
			return fmt.Errorf("section id is required")
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO profile_sections (id, user_id, kind, title, body, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sectionID,
			userID,
			string(section.Kind),
			section.Title,
			section.Body,
			section.Position,
		); err != nil {
			return fmt.Errorf("put section: %w", err)
		}
	}
	return nil
}

func (s *Store) listSections(ctx context.Context, userID string) ([]profile.Section, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, kind, title, body, position
		   FROM profile_sections
		  WHERE user_id = ?
		  ORDER BY position ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []profile.Section
	for rows.Next() {
		var section profile.Section
		var kind string
		if err := rows.Scan(&section.ID, &kind, &section.Title, &section.Body, &section.Position); err != nil {
			return nil, fmt.Errorf("list sections: %w", err)
		}
		section.Kind = profile.SectionKind(kind)
		sections = append(sections, section)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

var _ profile.Store = (*Store)(nil)
