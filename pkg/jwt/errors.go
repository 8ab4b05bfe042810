package jwt

import "errors"

var (
	// ErrMissingSigningKey is a configuration error: no secret was provided.
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	// ErrMissingSubject is returned by Issue for an empty user identifier.
	ErrMissingSubject = errors.New("jwt: missing subject")
	// ErrMalformedToken means the input is not a three-segment compact JWS.
	ErrMalformedToken = errors.New("jwt: malformed token")
	// ErrInvalidToken covers bad signatures, unexpected algorithms and unusable claims.
	ErrInvalidToken = errors.New("jwt: invalid token")
	// ErrExpiredToken means the signature is valid but exp has passed.
	ErrExpiredToken = errors.New("jwt: token is expired")
	// ErrNoToken is returned by extractors when the request carries no token.
	ErrNoToken = errors.New("jwt: no token in request")
)
