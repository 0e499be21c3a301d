package session

// Session is the advisory identity view derived from a decoded session token.
//
// Fields mirror what the storefront shows in its header and route guards. They are
// never used as an authorization decision: the server verifies the token on every
// call. An empty ID or Email stands for an absent claim.
type Session struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// HasID reports whether the token carried a user identifier. Cart calls are only
// attempted for sessions with an identifier.
func (s Session) HasID() bool {
	return s.ID != ""
}

// IsAdmin reports whether the session role is the back-office role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

const (
	// RoleAdmin is the role that lands on the admin dashboard after login.
	RoleAdmin = "ADMIN"
	// RoleUser is the role assumed when the token carries none.
	RoleUser = "USER"
)
