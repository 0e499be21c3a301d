package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/goCart/session"
)

type staticSource struct {
	s  session.Session
	ok bool
}

func (f staticSource) Session() (session.Session, bool) { return f.s, f.ok }

func serve(t *testing.T, guard func(http.Handler) http.Handler) (*httptest.ResponseRecorder, *session.Session) {
	t.Helper()
	var seen *session.Session
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatalf("admitted request carries no session")
		}
		seen = &s
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	return rec, seen
}

func TestRequireRole(t *testing.T) {
	admin := staticSource{s: session.Session{ID: "1", Role: session.RoleAdmin}, ok: true}
	user := staticSource{s: session.Session{ID: "2", Role: session.RoleUser}, ok: true}
	anon := staticSource{}

	tests := []struct {
		name  string
		guard func(http.Handler) http.Handler
		pass  bool
	}{
		{name: "admin on admin route", guard: RequireAdmin(admin, "/404"), pass: true},
		{name: "user on admin route", guard: RequireAdmin(user, "/404"), pass: false},
		{name: "anonymous on admin route", guard: RequireAdmin(anon, "/404"), pass: false},
		{name: "user on shopper route", guard: RequireShopper(user, "/404"), pass: true},
		{name: "admin on shopper route", guard: RequireShopper(admin, "/404"), pass: true},
		{name: "anonymous on shopper route", guard: RequireShopper(anon, "/404"), pass: false},
		{name: "no roles admits nobody", guard: RequireRole(admin, "/404"), pass: false},
		{name: "nil source", guard: RequireRole(nil, "/404", session.RoleAdmin), pass: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, seen := serve(t, tc.guard)
			if tc.pass {
				if rec.Code != http.StatusNoContent || seen == nil {
					t.Fatalf("expected pass, got %d", rec.Code)
				}
				return
			}
			if rec.Code != http.StatusFound {
				t.Fatalf("expected redirect, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/404" {
				t.Fatalf("expected redirect to /404, got %q", loc)
			}
		})
	}
}

func TestRequireRoleEmptyRoleNeverMatchesEmptyList(t *testing.T) {
	if Allowed(session.Session{}, true) {
		t.Fatalf("empty allow list must deny")
	}
	if Allowed(session.Session{Role: "USER"}, false, "USER") {
		t.Fatalf("missing session must deny")
	}
}
