package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token use values distinguish the two token kinds minted by the API. The
// refresh endpoint only accepts refresh tokens; everything else only accepts
// access tokens.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// TokenPayload captures the data available when minting a JWT.
type TokenPayload struct {
	UserID      uuid.UUID
	PhoneNumber string
	Admin       bool
	JTI         string
}

// Claims represents the typed JWT issued to clients.
type Claims struct {
	UserID      uuid.UUID `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Admin       bool      `json:"admin,omitempty"`
	TokenUse    string    `json:"token_use"`
	jwt.RegisteredClaims
}
