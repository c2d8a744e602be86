package models

import "github.com/golang-jwt/jwt/v5"

// Marketplace roles carried in Supabase app_metadata.role.
const (
	RoleMentor = "mentor"
	RoleMentee = "mentee"
	RoleAdmin  = "admin"
)

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email        string                   `json:"email"`
	Phone        string                   `json:"phone"`
	AppMetadata  map[string]interface{}   `json:"app_metadata"`
	UserMetadata map[string]interface{}   `json:"user_metadata"`
	Role         string                   `json:"role"` // "authenticated" or "anon"
	AAL          string                   `json:"aal"`
	AMR          []map[string]interface{} `json:"amr"`
	SessionID    string                   `json:"session_id"`
	IsAnonymous  bool                     `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// MarketplaceRole returns the mentor/mentee/admin role. app_metadata is
// only writable server-side, so user_metadata is never consulted here.
// Users without a role are mentees.
func (c *SupabaseClaims) MarketplaceRole() string {
	if role, ok := c.AppMetadata["role"].(string); ok {
		switch role {
		case RoleMentor, RoleAdmin, RoleMentee:
			return role
		}
	}
	return RoleMentee
}

// Principal is the authenticated caller as seen by services.
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller has the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
