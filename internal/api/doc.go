// Package api exposes the Prysma HTTP JSON surface.
//
// Handlers are organized by concern: account deletion (owner and admin),
// profile management, the public profile page, visit analytics,
// testimonials, and the oEmbed proxy. Authentication resolves a bearer
// token or session cookie into a credential at the edge; handlers pass
// that credential to the identity verifier and never inspect tokens
// themselves.
package api
