// Package billing cancels subscriptions against the external billing provider.
package billing

import "context"

// Provider is the billing surface consumed by the deletion workflow.
//
// A nil Provider means billing is not configured for this deployment;
// callers skip cancellation instead of failing.
type Provider interface {
	CancelSubscription(ctx context.Context, subscriptionID string) error
}
