package auth

import "context"

// ProviderAdapter hides one OAuth provider's endpoints and profile format.
type ProviderAdapter interface {
	// ProviderID is the stable tag stored as User.AuthProvider and used in routes.
	ProviderID() AuthProvider
	// AuthURL builds the consent-screen URL carrying state.
	AuthURL(state string) (string, error)
	// ResolveProfile exchanges code for a token and fetches the provider's user
	// profile. A rejected code is reported as ErrInvalidCode.
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}
