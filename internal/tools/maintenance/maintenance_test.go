package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/prysma/prysma/internal/account"
	"github.com/prysma/prysma/internal/identity"
)

type fakeDeleter struct {
	result account.DeletionResult
	err    error

	calls     int
	lastKind  identity.CredentialKind
	lastValue string
}

func (f *fakeDeleter) DeleteAccount(_ context.Context, credential identity.Credential) (account.DeletionResult, error) {
	f.calls++
	f.lastKind = credential.Kind
	f.lastValue = credential.Value
	return f.result, f.err
}

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PurgeAccount != "" {
		t.Fatalf("PurgeAccount = %q, want empty", cfg.PurgeAccount)
	}
	if cfg.Timeout != 5*time.Minute {
		t.Fatalf("Timeout = %v, want 5m", cfg.Timeout)
	}
	if cfg.DBPath == "" {
		t.Fatal("DBPath should have a default")
	}
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-purge-account", "user-9",
		"-db-path", "/tmp/test.db",
		"-json",
		"-timeout", "30s",
	})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PurgeAccount != "user-9" {
		t.Fatalf("PurgeAccount = %q", cfg.PurgeAccount)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.JSONOutput {
		t.Fatal("JSONOutput should be true")
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
}

func TestRunRequiresUserID(t *testing.T) {
	err := Run(context.Background(), Config{}, nil, nil)
	if err == nil {
		t.Fatal("Run should fail without -purge-account")
	}
	if !strings.Contains(err.Error(), "purge-account") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPurgePrintsLedger(t *testing.T) {
	deleter := &fakeDeleter{
		result: account.DeletionResult{
			UserID:                "user-1",
			SubscriptionCancelled: true,
			Resources:             account.ResourceResults{Profile: true, Analytics: true, Testimonials: true},
			IdentityDeleted:       true,
		},
	}
	var out bytes.Buffer

	err := runPurge(context.Background(), Config{}, deleter, "user-1", &out, nil)
	if err != nil {
		t.Fatalf("runPurge: %v", err)
	}
	if deleter.calls != 1 {
		t.Fatalf("deleter calls = %d, want 1", deleter.calls)
	}
	if deleter.lastKind != identity.CredentialOperator {
		t.Fatalf("credential kind = %v, want operator", deleter.lastKind)
	}
	if deleter.lastValue != "user-1" {
		t.Fatalf("credential value = %q", deleter.lastValue)
	}
	for _, want := range []string{
		"user: user-1",
		"subscription cancelled: true",
		"identity deleted: true",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunPurgeJSONOutput(t *testing.T) {
	deleter := &fakeDeleter{
		result: account.DeletionResult{
			UserID:          "user-2",
			Billing:         account.BillingSkipped("no subscription"),
			Resources:       account.ResourceResults{Profile: true, Analytics: true, Testimonials: true},
			IdentityDeleted: true,
		},
	}
	var out bytes.Buffer

	err := runPurge(context.Background(), Config{JSONOutput: true}, deleter, "user-2", &out, nil)
	if err != nil {
		t.Fatalf("runPurge: %v", err)
	}

	var report ledgerReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if report.UserID != "user-2" {
		t.Fatalf("UserID = %q", report.UserID)
	}
	if report.SubscriptionCancelled {
		t.Fatal("SubscriptionCancelled should be false for skipped billing")
	}
	if !report.IdentityDeleted {
		t.Fatal("IdentityDeleted should be true")
	}
}

func TestRunPurgeFailurePrintsPartialLedger(t *testing.T) {
	deleter := &fakeDeleter{
		result: account.DeletionResult{
			UserID:    "user-3",
			Resources: account.ResourceResults{Profile: true, Analytics: true, Testimonials: true},
			Errors:    []string{"identity: upstream unavailable"},
		},
		err: errors.New("upstream unavailable"),
	}
	var out, errOut bytes.Buffer

	err := runPurge(context.Background(), Config{}, deleter, "user-3", &out, &errOut)
	if err == nil {
		t.Fatal("runPurge should surface the deletion error")
	}
	if out.Len() != 0 {
		t.Fatalf("stdout should stay empty on failure, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "identity deleted: false") {
		t.Fatalf("stderr missing partial ledger:\n%s", errOut.String())
	}
	if !strings.Contains(errOut.String(), "failure: identity: upstream unavailable") {
		t.Fatalf("stderr missing failure entry:\n%s", errOut.String())
	}
}
