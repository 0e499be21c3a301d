package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/MrEthical07/goCart/session"
)

// SessionSource yields the current session. *goCart.Client implements it.
type SessionSource interface {
	Session() (session.Session, bool)
}

type sessionContextKey struct{}

// SessionFromContext returns the session a guard admitted the request with.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return s, ok
}

// Allowed reports whether a session with role may enter a route open to roles.
// An empty roles list admits nobody.
func Allowed(s session.Session, ok bool, roles ...string) bool {
	return ok && slices.Contains(roles, s.Role)
}

// RequireRole redirects to notFound unless the current session's role is one of
// roles.
func RequireRole(src SessionSource, notFound string, roles ...string) func(http.Handler) http.Handler {
	allowed := slices.Clone(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src == nil {
				http.Redirect(w, r, notFound, http.StatusFound)
				return
			}

			s, ok := src.Session()
			if !Allowed(s, ok, allowed...) {
				http.Redirect(w, r, notFound, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
