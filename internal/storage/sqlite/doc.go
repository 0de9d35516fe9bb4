// Package sqlite provides the SQLite-backed record store for users,
// sessions, profiles, visit events, and testimonials.
package sqlite
