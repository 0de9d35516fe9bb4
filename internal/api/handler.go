package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prysma/prysma/internal/account"
	"github.com/prysma/prysma/internal/analytics"
	"github.com/prysma/prysma/internal/identity"
	"github.com/prysma/prysma/internal/oembed"
	"github.com/prysma/prysma/internal/profile"
	"github.com/prysma/prysma/internal/testimonial"
)

// AccountService runs the account deletion workflow.
type AccountService interface {
	DeleteAccount(ctx context.Context, credential identity.Credential) (account.DeletionResult, error)
}

// Config carries handler dependencies.
type Config struct {
	Accounts     AccountService
	Identity     identity.Verifier
	Profiles     *profile.Service
	Analytics    *analytics.Service
	Testimonials *testimonial.Service
	Embeds       *oembed.Client
	// AdminKey guards operator routes. Empty disables them.
	AdminKey string
	Logger   *zap.Logger
}

// Handler serves the HTTP JSON API.
type Handler struct {
	accounts     AccountService
	identity     identity.Verifier
	profiles     *profile.Service
	analytics    *analytics.Service
	testimonials *testimonial.Service
	embeds       *oembed.Client
	adminKey     string
	logger       *zap.Logger
}

// NewHandler builds an API handler from its services.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		accounts:     cfg.Accounts,
		identity:     cfg.Identity,
		profiles:     cfg.Profiles,
		analytics:    cfg.Analytics,
		testimonials: cfg.Testimonials,
		embeds:       cfg.Embeds,
		adminKey:     strings.TrimSpace(cfg.AdminKey),
		logger:       logger,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc(http.MethodDelete+" /account", h.handleDeleteAccount)
	mux.HandleFunc(http.MethodDelete+" /admin/accounts/{userID}", h.handleAdminDeleteAccount)

	mux.HandleFunc(http.MethodGet+" /profile", h.handleGetProfile)
	mux.HandleFunc(http.MethodPut+" /profile", h.handleSaveProfile)
	mux.HandleFunc(http.MethodPut+" /profile/sections", h.handleReorderSections)
	mux.HandleFunc(http.MethodGet+" /profile/stats", h.handleVisitSummary)
	mux.HandleFunc(http.MethodGet+" /p/{username}", h.handlePublicProfile)

	mux.HandleFunc(http.MethodPost+" /visits", h.handleRecordVisit)

	mux.HandleFunc(http.MethodGet+" /testimonials", h.handleListTestimonials)
	mux.HandleFunc(http.MethodPost+" /testimonials", h.handleCreateTestimonial)
	mux.HandleFunc(http.MethodDelete+" /testimonials/{testimonialID}", h.handleDeleteTestimonial)

	mux.HandleFunc(http.MethodGet+" /oembed", h.handleOEmbed)

	return mux
}
