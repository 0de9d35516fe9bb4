// Package account removes all durable state owned by one identity.
//
// Deletion is an ordered workflow across billing, the record store, and the
// identity subsystem. Every step except identity removal is best-effort: its
// outcome is recorded in a per-resource ledger and never aborts the rest of
// the teardown. Identity removal is the one fatal step, and its failure
// carries the partial ledger so an operator can finish cleanup by hand.
package account
