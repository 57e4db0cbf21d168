package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields carried by a session token. Role is a snapshot taken at
// issuance; later role changes only apply to tokens issued afterwards.
type Claims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// String keeps the email out of log lines.
func (c *Claims) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Claims{Subject:%q, Role:%q}", c.Subject, c.Role)
}

// sessionClaims is the wire form of Claims.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
