// Package errors provides structured error handling with HTTP status mapping.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Identity errors
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeIdentityDeletion Code = "IDENTITY_DELETION_FAILED"

	// Profile errors
	CodeProfileEmptyUserID     Code = "PROFILE_EMPTY_USER_ID"
	CodeProfileEmptyUsername   Code = "PROFILE_EMPTY_USERNAME"
	CodeProfileInvalidUsername Code = "PROFILE_INVALID_USERNAME"
	CodeProfileUsernameTaken   Code = "PROFILE_USERNAME_TAKEN"
	CodeProfileInvalidSection  Code = "PROFILE_INVALID_SECTION"

	// Testimonial errors
	CodeTestimonialEmptyAuthor Code = "TESTIMONIAL_EMPTY_AUTHOR"
	CodeTestimonialEmptyQuote  Code = "TESTIMONIAL_EMPTY_QUOTE"

	// Analytics errors
	CodeVisitEmptyProfileID Code = "VISIT_EMPTY_PROFILE_ID"

	// Billing errors
	CodeBilling Code = "BILLING_CANCELLATION_FAILED"

	// Embed errors
	CodeEmbedUnsupportedProvider Code = "EMBED_UNSUPPORTED_PROVIDER"
	CodeEmbedUpstreamFailure     Code = "EMBED_UPSTREAM_FAILURE"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeTransientStore Code = "TRANSIENT_STORE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeProfileEmptyUserID,
		CodeProfileEmptyUsername,
		CodeProfileInvalidUsername,
		CodeProfileInvalidSection,
		CodeTestimonialEmptyAuthor,
		CodeTestimonialEmptyQuote,
		CodeVisitEmptyProfileID,
		CodeEmbedUnsupportedProvider:
		return http.StatusBadRequest

	case CodeUnauthenticated:
		return http.StatusUnauthorized

	case CodeNotFound:
		return http.StatusNotFound

	case CodeProfileUsernameTaken:
		return http.StatusConflict

	case CodeEmbedUpstreamFailure:
		return http.StatusBadGateway

	// Identity deletion failure is surfaced as a 500 carrying the
	// partial-deletion ledger, never swallowed.
	case CodeIdentityDeletion,
		CodeBilling,
		CodeTransientStore:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
