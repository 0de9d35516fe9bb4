// Package app wires the Prysma services into one HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prysma/prysma/internal/account"
	"github.com/prysma/prysma/internal/analytics"
	"github.com/prysma/prysma/internal/api"
	"github.com/prysma/prysma/internal/billing"
	"github.com/prysma/prysma/internal/identity"
	"github.com/prysma/prysma/internal/oembed"
	"github.com/prysma/prysma/internal/profile"
	"github.com/prysma/prysma/internal/storage/sqlite"
	"github.com/prysma/prysma/internal/testimonial"
)

// Config holds server wiring configuration.
type Config struct {
	HTTPAddr string
	DBPath   string
	AdminKey string
	Logger   *zap.Logger
}

// Server hosts the Prysma HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	logger     *zap.Logger
}

// New creates a configured server listening on the provided address.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http addr is required")
	}

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	tokens, err := identity.LoadTokenConfigFromEnv(time.Now)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}
	verifier := identity.NewService(store, store, tokens)

	var billingProvider account.BillingProvider
	stripeConfig, err := billing.LoadStripeConfigFromEnv()
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}
	if stripeConfig.Enabled() {
		billingProvider = billing.NewStripeClient(stripeConfig)
	} else {
		logger.Info("billing not configured, subscription cancellation disabled")
	}

	accounts := account.NewService(verifier, store, store, store, billingProvider, account.Config{
		Logger: logger,
	})
	handler := api.NewHandler(api.Config{
		Accounts:     accounts,
		Identity:     verifier,
		Profiles:     profile.NewService(store),
		Analytics:    analytics.NewService(store),
		Testimonials: testimonial.NewService(store),
		Embeds:       oembed.NewClient(oembed.Config{}),
		AdminKey:     cfg.AdminKey,
		Logger:       logger,
	})

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:  store,
		logger: logger,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	s.logger.Info("server listening", zap.String("addr", s.listener.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case err := <-serveErr:
		return handleErr(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return handleErr(<-serveErr)
	}
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close store", zap.Error(err))
	}
}
