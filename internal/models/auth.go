package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller passed explicitly into services.
type Identity struct {
	UserID   int64    `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// SignupRequest creates an HR account.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SessionInfo describes the authenticated user in responses.
type SessionInfo struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	RoleLabel string   `json:"roleLabel"`
}

// NewSessionInfo builds the response view of an identity.
func NewSessionInfo(id Identity) SessionInfo {
	return SessionInfo{ID: id.UserID, Username: id.Username, Role: id.Role, RoleLabel: id.Role.Label()}
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
	User      SessionInfo `json:"user"`
	IssuedAt  time.Time   `json:"issuedAt"`
}

// Session is the server-side login state kept in Redis.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity returns the caller view of the session.
func (s Session) Identity() Identity {
	return Identity{UserID: s.UserID, Username: s.Username, Role: s.Role}
}

// SessionClaims is the signed token payload that references a session.
type SessionClaims struct {
	SessionID string   `json:"sid"`
	UserID    int64    `json:"uid"`
	Username  string   `json:"username"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}
