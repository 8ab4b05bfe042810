// Package auth turns a third-party sign-in into a local account and a bearer
// credential, and gates protected requests on that credential.
//
// The package is built from small services with explicit dependencies:
//
//   - Reconciler maps a verified external profile to exactly one local User,
//     keyed by normalized email. Concurrent first logins for the same address
//     collapse into a single creation.
//   - ExchangeService drives the OAuth redirect/callback handshake through a
//     ProviderAdapter, then calls the Reconciler and the credential issuer.
//     The exchange is all-or-nothing: either a complete credential is
//     returned or an error is.
//   - Authenticator extracts a bearer token from a request, verifies it and
//     resolves the current User. Every rejection wraps ErrUnauthorized.
//   - ProfileService reads and updates the small set of user-editable fields
//     and records profile completion.
//
// Storage is abstracted behind UserStorage and StateStorage. MemoryStorage
// implements both for tests and single-process deployments; the userstore
// package provides MongoDB and PostgreSQL implementations.
//
// # Usage
//
//	storage := auth.NewMemoryStorage()
//	codec, _ := jwt.New(jwtCfg)
//
//	exchange := auth.NewExchangeService(
//		auth.NewGoogleAdapter(googleCfg),
//		auth.NewReconciler(storage, auth.WithReconcilerLogger(log)),
//		codec,
//		storage,
//		auth.WithExchangeTimeout(15*time.Second),
//	)
//
//	authn := auth.NewAuthenticator(codec, storage)
//	mux.Handle("GET /me", authn.Protect(func(w http.ResponseWriter, r *http.Request, user *auth.User) {
//		// user is never nil here
//	}))
//
// # Error Handling
//
// ErrMissingEmail, ErrInvalidState, ErrInvalidCode and ErrExchangeTimeout
// are exchange failures and should end in the failure redirect.
// ErrNoCredential, ErrInvalidCredential and ErrUnknownSubject all wrap
// ErrUnauthorized; clients must see one uniform unauthorized response no
// matter which of them occurred.
package auth
