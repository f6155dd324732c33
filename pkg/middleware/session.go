package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"courseadmin/pkg/claims"
	"courseadmin/pkg/session"
)

// EntryPoint is where unauthenticated callers are sent.
const EntryPoint = "/"

type SessionState interface {
	State() session.State
	Current() (*session.Session, bool)
}

// Loading answers 503 until the session state has settled, so no screen
// decides between login and protected content on a state it does not know.
func Loading(sessions SessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.State() == session.StateUnknown {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"state":   session.StateUnknown.String(),
					"message": "loading",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession redirects callers without a session to the entry point and
// puts the session on the request context otherwise.
func RequireSession(sessions SessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := sessions.Current()
			if !ok {
				http.Redirect(w, r, EntryPoint, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireRole hides actions from sessions without the given role. The role
// is read from an unverified token, so this is presentation only; the backend
// makes the real authorization decision.
func RequireRole(role claims.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := session.FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, EntryPoint, http.StatusSeeOther)
				return
			}
			if s.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": strings.ToLower(string(role)) + " role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
