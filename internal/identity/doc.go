// Package identity resolves caller credentials to stable user identities
// and owns terminal identity deletion.
//
// The verifier is the only component allowed to turn an opaque bearer token,
// session cookie, or operator assertion into a user ID. Everything downstream
// treats the resolved Identity as trusted.
package identity
