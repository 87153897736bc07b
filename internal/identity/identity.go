// Package identity integrates the external identity-assertion provider:
// session start redirects the respondent there and the provider redirects
// back with a ticket that resolves to verified contact data.
package identity

import "context"

// Identity is the verified data returned by the provider.
type Identity struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Provider is the redirect-based identity collaborator.
type Provider interface {
	// BeginURL builds the provider URL the respondent is redirected to;
	// state is an opaque value echoed back on the callback.
	BeginURL(state string) string

	// Resolve exchanges the callback ticket for the verified identity.
	Resolve(ctx context.Context, ticket string) (*Identity, error)
}
