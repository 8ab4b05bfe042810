// Package jwt issues and verifies the bearer credential used by every
// protected API call.
//
// A credential is an HS256-signed JSON Web Token whose claims carry the
// user identifier (sub), the issue time (iat) and the expiry (exp). The
// package is stateless: verification is a pure computation over the token
// and the shared signing secret, so a Service is safe for concurrent use.
//
// # Architecture
//
//   - Service – issues and verifies credentials.
//   - middleware.go – the Authorization header extractor.
//   - errors.go – sentinel errors, one per failure class.
//
// # Usage
//
//	svc, err := jwt.New(jwt.Config{Secret: os.Getenv("JWT_SECRET"), TTL: 7 * 24 * time.Hour})
//	if err != nil {
//		// ErrMissingSigningKey: refuse to start
//	}
//
//	token, err := svc.Issue(user.ID.String())
//
//	subject, err := svc.Verify(token)
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):
//	case errors.Is(err, jwt.ErrInvalidToken):
//	case errors.Is(err, jwt.ErrMalformedToken):
//	}
//
// # Error Handling
//
// Verify distinguishes malformed input, bad signatures and expired tokens so
// callers can log the reason. Callers facing the network should collapse all
// three into a single unauthorized outcome.
package jwt
