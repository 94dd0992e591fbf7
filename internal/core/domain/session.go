package domain

// Roles carried in identity-provider tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session is the authenticated principal for one request. It is built by the
// auth middleware and passed explicitly to the logic layer.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// IsAdmin reports whether the session may use the admin endpoints.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
