package auth

import "github.com/labstack/echo/v4"

// identityKey is the echo context key under which the gate stores the
// resolved caller. It is the only state handlers may trust for "who is
// calling".
const identityKey = "identity"

// Identity is the authenticated caller resolved by the authorization gate.
type Identity struct {
	ID       string
	Email    string
	Username string
	Roles    []string
}

// Bind attaches the identity to the request context.
func Bind(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

// FromContext returns the identity bound by the gate, if any.
func FromContext(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}
