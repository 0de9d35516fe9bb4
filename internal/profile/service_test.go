package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/prysma/prysma/internal/platform/errors"
)

type fakeStore struct {
	profiles map[string]Profile
	putErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]Profile)}
}

func (f *fakeStore) PutProfile(ctx context.Context, p Profile) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	found, ok := f.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return found, nil
}

func (f *fakeStore) GetProfileByUsername(ctx context.Context, username string) (Profile, error) {
	for _, p := range f.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (f *fakeStore) PutSections(ctx context.Context, userID string, sections []Section) error {
	p, ok := f.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.Sections = sections
	f.profiles[userID] = p
	return nil
}

func (f *fakeStore) DeleteProfile(ctx context.Context, userID string) (int64, error) {
	if _, ok := f.profiles[userID]; !ok {
		return 0, nil
	}
	delete(f.profiles, userID)
	return 1, nil
}

func testClockService(store Store, now time.Time) *Service {
	svc := NewService(store)
	svc.clock = func() time.Time { return now }
	return svc
}

func TestSaveCreatesProfileWithSections(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := testClockService(store, now)

	saved, err := svc.Save(context.Background(), SaveInput{
		UserID:      "user-1",
		Username:    "ada.lovelace",
		DisplayName: "Ada Lovelace",
		Sections: []Section{
			{Kind: SectionBio, Title: "About", Body: `{"text":"analyst"}`},
			{Kind: SectionSkills, Title: "Skills", Body: `{"items":["math"]}`},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.CreatedAt != now || saved.UpdatedAt != now {
		t.Fatalf("timestamps = %v/%v, want %v", saved.CreatedAt, saved.UpdatedAt, now)
	}
	if len(saved.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(saved.Sections))
	}
	for i, section := range saved.Sections {
		if section.ID == "" {
			t.Fatalf("section %d missing generated id", i)
		}
		if section.Position != i {
			t.Fatalf("section %d position = %d, want %d", i, section.Position, i)
		}
	}
}

func TestSavePreservesCreatedAtOnUpdate(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.profiles["user-1"] = Profile{UserID: "user-1", Username: "ada", CreatedAt: created}

	later := created.Add(48 * time.Hour)
	svc := testClockService(store, later)

	saved, err := svc.Save(context.Background(), SaveInput{UserID: "user-1", Username: "ada"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved.CreatedAt.Equal(created) {
		t.Fatalf("created at = %v, want %v", saved.CreatedAt, created)
	}
	if !saved.UpdatedAt.Equal(later) {
		t.Fatalf("updated at = %v, want %v", saved.UpdatedAt, later)
	}
}

func TestSaveRejectsInvalidUsername(t *testing.T) {
	t.Parallel()

	svc := testClockService(newFakeStore(), time.Now())

	for _, username := range []string{"", "ab", "Has Spaces", "UPPER", "way-too-long-username-that-keeps-going-and-going"} {
		_, err := svc.Save(context.Background(), SaveInput{UserID: "user-1", Username: username})
		if err == nil {
			t.Fatalf("expected error for username %q", username)
		}
	}
}

func TestSaveRejectsTakenUsername(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["user-1"] = Profile{UserID: "user-1", Username: "ada"}
	svc := testClockService(store, time.Now())

	_, err := svc.Save(context.Background(), SaveInput{UserID: "user-2", Username: "ada"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want username taken", err)
	}
}

func TestSaveRejectsUnknownSectionKind(t *testing.T) {
	t.Parallel()

	svc := testClockService(newFakeStore(), time.Now())

	_, err := svc.Save(context.Background(), SaveInput{
		UserID:   "user-1",
		Username: "ada",
		Sections: []Section{{Kind: "blink-tag"}},
	})
	if apperrors.GetCode(err) != apperrors.CodeProfileInvalidSection {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeProfileInvalidSection)
	}
}

func TestHasSubscription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		subscriptionID string
		want           bool
	}{
		{"linked", "sub_123", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := Profile{StripeSubscriptionID: tc.subscriptionID}
			if got := p.HasSubscription(); got != tc.want {
				t.Fatalf("HasSubscription() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestPublicViewStripsBillingLinkage(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["user-1"] = Profile{
		UserID:               "user-1",
		Username:             "ada",
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_123",
	}
	svc := testClockService(store, time.Now())

	found, err := svc.PublicView(context.Background(), "ada")
	if err != nil {
		t.Fatalf("public view: %v", err)
	}
	if found.StripeCustomerID != "" || found.StripeSubscriptionID != "" {
		t.Fatal("expected billing linkage stripped from public view")
	}
}

func TestReorderSections(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["user-1"] = Profile{
		UserID:   "user-1",
		Username: "ada",
		Sections: []Section{
			{ID: "s1", Kind: SectionBio, Position: 0},
			{ID: "s2", Kind: SectionSkills, Position: 1},
			{ID: "s3", Kind: SectionSocialLinks, Position: 2},
		},
	}
	svc := testClockService(store, time.Now())

	if err := svc.ReorderSections(context.Background(), "user-1", []string{"s3", "s1", "s2"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	sections := store.profiles["user-1"].Sections
	want := []string{"s3", "s1", "s2"}
	for i, section := range sections {
		if section.ID != want[i] {
			t.Fatalf("section %d = %q, want %q", i, section.ID, want[i])
		}
		if section.Position != i {
			t.Fatalf("section %q position = %d, want %d", section.ID, section.Position, i)
		}
	}
}

func TestReorderSectionsRejectsPartialList(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["user-1"] = Profile{
		UserID:   "user-1",
		Username: "ada",
		Sections: []Section{
			{ID: "s1", Kind: SectionBio},
			{ID: "s2", Kind: SectionSkills},
		},
	}
	svc := testClockService(store, time.Now())

	err := svc.ReorderSections(context.Background(), "user-1", []string{"s1"})
	if apperrors.GetCode(err) != apperrors.CodeProfileInvalidSection {
		t.Fatalf("code = %v, want %v", apperrors.GetCode(err), apperrors.CodeProfileInvalidSection)
	}
}
