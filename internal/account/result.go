package account

import "time"

// BillingStatus identifies the outcome of a subscription cancellation attempt.
type BillingStatus int

const (
	// BillingStatusUnspecified indicates no cancellation outcome was recorded.
	BillingStatusUnspecified BillingStatus = iota
	// BillingStatusOk indicates the subscription was cancelled.
	BillingStatusOk
	// BillingStatusSkipped indicates no cancellation was needed or possible.
	BillingStatusSkipped
	// BillingStatusFailed indicates the cancellation attempt failed.
	BillingStatusFailed
)

// BillingOutcome records one subscription cancellation attempt.
type BillingOutcome struct {
	Status BillingStatus
	Reason string
}

// BillingOk reports a successful cancellation.
func BillingOk() BillingOutcome {
	return BillingOutcome{Status: BillingStatusOk}
}

// BillingSkipped reports that cancellation was not attempted.
func BillingSkipped(reason string) BillingOutcome {
	return BillingOutcome{Status: BillingStatusSkipped, Reason: reason}
}

// BillingFailed reports a cancellation attempt that failed.
func BillingFailed(reason string) BillingOutcome {
	return BillingOutcome{Status: BillingStatusFailed, Reason: reason}
}

// Cancelled reports whether the subscription was actually cancelled.
func (o BillingOutcome) Cancelled() bool {
	return o.Status == BillingStatusOk
}

// ResourceResults records per-resource deletion success flags.
//
// Deletions are idempotent at the store level, so "nothing matched" counts
// as success. A false flag always pairs with an entry in the result's Errors.
type ResourceResults struct {
	Profile      bool
	Analytics    bool
	Testimonials bool
}

// DeletionResult is the ledger for one account deletion.
//
// All fields are always present. Booleans default to false rather than
// absent so serialization stays stable across partial failures.
type DeletionResult struct {
	UserID                string
	Email                 string
	SubscriptionCancelled bool
	Billing               BillingOutcome
	Resources             ResourceResults
	IdentityDeleted       bool
	Errors                []string
	CompletedAt           time.Time
}
