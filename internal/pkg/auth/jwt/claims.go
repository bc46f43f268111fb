package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a client session token. It names the account
// without carrying its secret, so the persisted session can be replayed for
// auto-login without storing the password.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user ID the session belongs to.
	ID string `json:"id"`

	// Username is the login key at the time the session was issued.
	Username string `json:"username"`

	// Credential is a fingerprint of the password hash the session was issued
	// against. Changing the password invalidates older sessions.
	Credential string `json:"credential"`
}
