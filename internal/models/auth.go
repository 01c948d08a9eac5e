package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the roles the API distinguishes.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleMember UserRole = "MEMBER"
)

// JWTClaims are the access-token claims this service validates. Token
// issuance lives in the membership service.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
