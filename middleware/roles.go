package middleware

import (
	"net/http"

	"github.com/MrEthical07/goCart/session"
)

// RequireAdmin admits ADMIN sessions only.
func RequireAdmin(src SessionSource, notFound string) func(http.Handler) http.Handler {
	return RequireRole(src, notFound, session.RoleAdmin)
}

// RequireShopper admits any signed-in USER or ADMIN.
func RequireShopper(src SessionSource, notFound string) func(http.Handler) http.Handler {
	return RequireRole(src, notFound, session.RoleUser, session.RoleAdmin)
}
