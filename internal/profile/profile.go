// Package profile provides the user-owned public profile card.
package profile

import (
	"regexp"
	"strings"
	"time"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.\-]{3,32}$`)
)

// SectionKind identifies one draggable profile card section type.
type SectionKind string

const (
	// SectionBio is the free-form biography section.
	SectionBio SectionKind = "bio"
	// SectionSkills lists professional skills.
	SectionSkills SectionKind = "skills"
	// SectionSocialLinks lists external social links.
	SectionSocialLinks SectionKind = "social_links"
	// SectionMediaHighlights embeds external media via oEmbed.
	SectionMediaHighlights SectionKind = "media_highlights"
)

// KnownSectionKind reports whether kind is a supported section type.
func KnownSectionKind(kind SectionKind) bool {
	switch kind {
	case SectionBio, SectionSkills, SectionSocialLinks, SectionMediaHighlights:
		return true
	}
	return false
}

// Section is one ordered block on the profile card.
//
// Body is an opaque JSON document owned by the frontend; the server only
// guarantees ordering and ownership.
type Section struct {
	ID       string
	Kind     SectionKind
	Title    string
	Body     string
	Position int
}

// Profile is the user-owned row holding display and billing-linkage attributes.
// At most one Profile exists per identity.
type Profile struct {
	UserID               string
	Username             string
	DisplayName          string
	Headline             string
	AvatarURL            string
	StripeCustomerID     string
	StripeSubscriptionID string
	Sections             []Section
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasSubscription reports whether the profile carries billing linkage worth
// cancelling during teardown.
func (p Profile) HasSubscription() bool {
	return strings.TrimSpace(p.StripeSubscriptionID) != ""
}

// ValidateUsername enforces the canonical public handle format used in
// profile URLs.
func ValidateUsername(s string) error {
	if s == "" {
		return ErrEmptyUsername
	}
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}
