package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prysma/prysma/internal/identity"
	apperrors "github.com/prysma/prysma/internal/platform/errors"
	"github.com/prysma/prysma/internal/profile"
)

const (
	defaultCallTimeout   = 5 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond

	resourceProfile      = "profile"
	resourceAnalytics    = "analytics"
	resourceTestimonials = "testimonials"
)

var (
	// ErrServiceNotConfigured indicates the account service is nil.
	ErrServiceNotConfigured = errors.New("account service is not configured")
	// ErrVerifierNotConfigured indicates the identity dependency is missing.
	ErrVerifierNotConfigured = errors.New("identity verifier is not configured")
	// ErrProfileStoreNotConfigured indicates the profile store dependency is missing.
	ErrProfileStoreNotConfigured = errors.New("profile store is not configured")
)

// ProfileStore reads billing linkage and deletes the profile row for one user.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (profile.Profile, error)
	DeleteProfile(ctx context.Context, userID string) (int64, error)
}

// AnalyticsStore deletes visit events owned by one user.
type AnalyticsStore interface {
	DeleteVisitsByUser(ctx context.Context, profileUserID string) (int64, error)
}

// TestimonialStore deletes testimonials owned by one user.
type TestimonialStore interface {
	DeleteTestimonialsByUser(ctx context.Context, profileUserID string) (int64, error)
}

// BillingProvider cancels external subscriptions. A nil provider means
// billing is not configured and cancellation is skipped.
type BillingProvider interface {
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// Config controls deletion workflow timeouts and retry behavior.
type Config struct {
	// CallTimeout bounds each external call. Zero means a few seconds.
	CallTimeout time.Duration
	// RetryAttempts bounds retries of transient store deletes.
	RetryAttempts int
	// RetryDelay is the pause between store delete retries.
	RetryDelay time.Duration
	// RetryClock drives retry pacing; tests inject a fake.
	RetryClock clock.Clock
	// Clock resolves ledger timestamps.
	Clock func() time.Time
	// Logger records per-step degradation. Nil means no logging.
	Logger *zap.Logger
}

// Service orchestrates account teardown across billing, the record store,
// and the identity subsystem.
type Service struct {
	verifier     identity.Verifier
	profiles     ProfileStore
	analytics    AnalyticsStore
	testimonials TestimonialStore
	billing      BillingProvider

	callTimeout   time.Duration
	retryAttempts int
	retryDelay    time.Duration
	retryClock    clock.Clock
	clock         func() time.Time
	logger        *zap.Logger
	tracer        trace.Tracer
}

// NewService builds an account deletion service from its collaborators.
func NewService(verifier identity.Verifier, profiles ProfileStore, analyticsStore AnalyticsStore, testimonials TestimonialStore, billing BillingProvider, cfg Config) *Service {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.RetryClock == nil {
		cfg.RetryClock = clock.WallClock
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		verifier:      verifier,
		profiles:      profiles,
		analytics:     analyticsStore,
		testimonials:  testimonials,
		billing:       billing,
		callTimeout:   cfg.CallTimeout,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		retryClock:    cfg.RetryClock,
		clock:         cfg.Clock,
		logger:        cfg.Logger,
		tracer:        otel.Tracer("prysma/account"),
	}
}

// DeleteAccount removes all durable state for the identity behind credential.
//
// The credential must resolve to exactly one identity or the call fails with
// an authentication error before any side effect. Billing cancellation and
// dependent-record deletion are best-effort and recorded in the returned
// ledger. Identity removal is fatal: when it fails the error carries the
// partial ledger describing everything already removed.
//
// There is no locking and no compensating transaction. Two racing calls for
// the same identity both succeed because every delete tolerates zero matched
// rows. Erasure is irreversible by intent.
func (s *Service) DeleteAccount(ctx context.Context, credential identity.Credential) (DeletionResult, error) {
	if s == nil {
		return DeletionResult{}, ErrServiceNotConfigured
	}
	if s.verifier == nil {
		return DeletionResult{}, ErrVerifierNotConfigured
	}
	if s.profiles == nil || s.analytics == nil || s.testimonials == nil {
		return DeletionResult{}, ErrProfileStoreNotConfigured
	}

	ctx, span := s.tracer.Start(ctx, "account.DeleteAccount")
	defer span.End()

	ident, err := s.verify(ctx, credential)
	if err != nil {
		return DeletionResult{}, err
	}
	span.SetAttributes(attribute.String("prysma.user_id", ident.ID))
	logger := s.logger.With(zap.String("user_id", ident.ID))

	result := DeletionResult{
		UserID: ident.ID,
		Email:  ident.Email,
	}

	prof, hasProfile, err := s.loadProfile(ctx, ident.ID)
	if err != nil {
		// The row may still exist; the delete below settles it either way.
		logger.Warn("profile load failed", zap.Error(err))
	}

	result.Billing = s.cancelSubscription(ctx, logger, prof, hasProfile)
	result.SubscriptionCancelled = result.Billing.Cancelled()

	var mu sync.Mutex
	recordFailure := func(resource string, err error) {
		logger.Warn("resource deletion failed",
			zap.String("resource", resource),
			zap.Error(err))
		mu.Lock()
		result.Errors = append(result.Errors, resource+": "+err.Error())
		mu.Unlock()
	}

	// Dependent deletions are mutually independent and idempotent, so they
	// run concurrently. A failure in one never stops the other.
	var group errgroup.Group
	group.Go(func() error {
		if err := s.retryDelete(ctx, resourceAnalytics, func(callCtx context.Context) (int64, error) {
			return s.analytics.DeleteVisitsByUser(callCtx, ident.ID)
		}); err != nil {
			recordFailure(resourceAnalytics, err)
			return nil
		}
		mu.Lock()
		result.Resources.Analytics = true
		mu.Unlock()
		return nil
	})
	group.Go(func() error {
		if err := s.retryDelete(ctx, resourceTestimonials, func(callCtx context.Context) (int64, error) {
			return s.testimonials.DeleteTestimonialsByUser(callCtx, ident.ID)
		}); err != nil {
			recordFailure(resourceTestimonials, err)
			return nil
		}
		mu.Lock()
		result.Resources.Testimonials = true
		mu.Unlock()
		return nil
	})
	_ = group.Wait()

	if err := s.retryDelete(ctx, resourceProfile, func(callCtx context.Context) (int64, error) {
		return s.profiles.DeleteProfile(callCtx, ident.ID)
	}); err != nil {
		recordFailure(resourceProfile, err)
	} else {
		result.Resources.Profile = true
	}

	span.SetAttributes(
		attribute.Bool("prysma.subscription_cancelled", result.SubscriptionCancelled),
		attribute.Bool("prysma.profile_deleted", result.Resources.Profile),
		attribute.Bool("prysma.analytics_deleted", result.Resources.Analytics),
		attribute.Bool("prysma.testimonials_deleted", result.Resources.Testimonials),
	)

	if err := s.deleteIdentity(ctx, ident.ID); err != nil {
		logger.Error("identity deletion failed", zap.Error(err))
		result.CompletedAt = s.nowUTC()
		return result, err
	}
	result.IdentityDeleted = true
	result.CompletedAt = s.nowUTC()

	logger.Info("account deleted",
		zap.Bool("subscription_cancelled", result.SubscriptionCancelled),
		zap.Int("partial_failures", len(result.Errors)))
	return result, nil
}

// verify resolves the caller's credential inside one bounded call.
func (s *Service) verify(ctx context.Context, credential identity.Credential) (identity.Identity, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.verifier.Verify(callCtx, credential)
}

// loadProfile reads the caller's profile row. Absence is not an error.
func (s *Service) loadProfile(ctx context.Context, userID string) (profile.Profile, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	prof, err := s.profiles.GetProfile(callCtx, userID)
	switch {
	case err == nil:
		return prof, true, nil
	case errors.Is(err, profile.ErrNotFound):
		return profile.Profile{}, false, nil
	default:
		return profile.Profile{}, false, err
	}
}

// cancelSubscription attempts best-effort subscription teardown.
//
// Billing cleanup may fail independently of data deletion. A stuck billing
// API must never block a user's right to have their data removed.
func (s *Service) cancelSubscription(ctx context.Context, logger *zap.Logger, prof profile.Profile, hasProfile bool) BillingOutcome {
	if !hasProfile {
		return BillingSkipped("no profile")
	}
	if !prof.HasSubscription() {
		return BillingSkipped("no subscription")
	}
	if s.billing == nil {
		return BillingSkipped("billing not configured")
	}
	subscriptionID := strings.TrimSpace(prof.StripeSubscriptionID)

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.billing.CancelSubscription(callCtx, subscriptionID); err != nil {
		logger.Warn("subscription cancellation failed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return BillingFailed(err.Error())
	}
	return BillingOk()
}

// deleteIdentity removes the identity record, the one fatal step.
func (s *Service) deleteIdentity(ctx context.Context, userID string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.verifier.DeleteIdentity(callCtx, userID); err != nil {
		if apperrors.GetCode(err) == apperrors.CodeIdentityDeletion {
			return err
		}
		return apperrors.Wrap(apperrors.CodeIdentityDeletion, "delete identity", err)
	}
	return nil
}

// retryDelete runs one store delete with bounded retries for transient
// failures. Zero rows affected is success; deletes are idempotent by key.
func (s *Service) retryDelete(ctx context.Context, resource string, del func(context.Context) (int64, error)) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()
			_, err := del(callCtx)
			return err
		},
		IsFatalError: func(err error) bool {
			return ctx.Err() != nil
		},
		NotifyFunc: func(err error, attempt int) {
			s.logger.Debug("store delete retry",
				zap.String("resource", resource),
				zap.Int("attempt", attempt),
				zap.Error(err))
		},
		Attempts: s.retryAttempts,
		Delay:    s.retryDelay,
		Clock:    s.retryClock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTransientStore, "delete "+resource, err)
	}
	return nil
}

// nowUTC resolves the ledger timestamp.
func (s *Service) nowUTC() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
