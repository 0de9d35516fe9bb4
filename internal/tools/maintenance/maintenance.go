// Package maintenance implements operator account-purge tooling.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/prysma/prysma/internal/account"
	"github.com/prysma/prysma/internal/billing"
	"github.com/prysma/prysma/internal/identity"
	"github.com/prysma/prysma/internal/platform/config"
	"github.com/prysma/prysma/internal/storage/sqlite"
)

// Config holds maintenance command configuration.
type Config struct {
	PurgeAccount string
	DBPath       string        `env:"PRYSMA_DB_PATH"`
	Timeout      time.Duration `env:"PRYSMA_MAINTENANCE_TIMEOUT" envDefault:"5m"`
	JSONOutput   bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "prysma.db")
	}

	fs.StringVar(&cfg.PurgeAccount, "purge-account", "", "user ID whose account should be purged")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output the deletion ledger as JSON")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// accountDeleter is the orchestrator surface the purge command drives.
type accountDeleter interface {
	DeleteAccount(ctx context.Context, credential identity.Credential) (account.DeletionResult, error)
}

// Run executes the maintenance command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	userID := strings.TrimSpace(cfg.PurgeAccount)
	if userID == "" {
		return errors.New("-purge-account requires a user ID")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var provider account.BillingProvider
	stripeConfig, err := billing.LoadStripeConfigFromEnv()
	if err != nil {
		return err
	}
	if stripeConfig.Enabled() {
		provider = billing.NewStripeClient(stripeConfig)
	}

	verifier := identity.NewService(store, store, identity.TokenConfig{})
	deleter := account.NewService(verifier, store, store, store, provider, account.Config{})
	return runPurge(ctx, cfg, deleter, userID, out, errOut)
}

func runPurge(ctx context.Context, cfg Config, deleter accountDeleter, userID string, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	result, err := deleter.DeleteAccount(ctx, identity.OperatorCredential(userID))
	if err != nil {
		// The partial ledger still prints so the operator knows what is left.
		writeLedger(errOut, cfg, result)
		return fmt.Errorf("purge account %s: %w", userID, err)
	}
	writeLedger(out, cfg, result)
	return nil
}

func writeLedger(out io.Writer, cfg Config, result account.DeletionResult) {
	if cfg.JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(ledgerReport{
			UserID:                result.UserID,
			SubscriptionCancelled: result.SubscriptionCancelled,
			Profile:               result.Resources.Profile,
			Analytics:             result.Resources.Analytics,
			Testimonials:          result.Resources.Testimonials,
			IdentityDeleted:       result.IdentityDeleted,
			Errors:                result.Errors,
		})
		return
	}
	fmt.Fprintf(out, "user: %s\n", result.UserID)
	fmt.Fprintf(out, "subscription cancelled: %t\n", result.SubscriptionCancelled)
	fmt.Fprintf(out, "profile deleted: %t\n", result.Resources.Profile)
	fmt.Fprintf(out, "analytics deleted: %t\n", result.Resources.Analytics)
	fmt.Fprintf(out, "testimonials deleted: %t\n", result.Resources.Testimonials)
	fmt.Fprintf(out, "identity deleted: %t\n", result.IdentityDeleted)
	for _, entry := range result.Errors {
		fmt.Fprintf(out, "failure: %s\n", entry)
	}
}

type ledgerReport struct {
	UserID                string   `json:"userId"`
	SubscriptionCancelled bool     `json:"subscriptionCancelled"`
	Profile               bool     `json:"profile"`
	Analytics             bool     `json:"analytics"`
	Testimonials          bool     `json:"testimonials"`
	IdentityDeleted       bool     `json:"identityDeleted"`
	Errors                []string `json:"errors,omitempty"`
}
