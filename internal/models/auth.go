package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the identity attached to requests by the auth middleware.
// Tokens are issued by the external identity service; this API only verifies.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
