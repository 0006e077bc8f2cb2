package middleware

import (
	"net/http"
	"strings"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/session"
)

// Decision is the guard's verdict for a request.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

const (
	LoginPath = "/login"
	apiPrefix = "/api/"
)

// DefaultPublicPrefixes are reachable without a session.
var DefaultPublicPrefixes = []string{LoginPath, "/api/auth/login", "/api/auth/signup"}

// Decide is a plain prefix match; "/loginfoo" is public because "/login" is.
func Decide(path string, hasToken bool, public []string) Decision {
	for _, prefix := range public {
		if strings.HasPrefix(path, prefix) {
			return Allow
		}
	}
	if hasToken {
		return Allow
	}
	if strings.HasPrefix(path, apiPrefix) {
		return Unauthorized
	}
	return RedirectToLogin
}

// Guard checks for a session cookie before any handler runs. It looks only at presence;
// the backend decides whether the token is still valid.
func Guard(cookies *session.Cookies, public []string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasToken := cookies.Read(r)

			switch Decide(r.URL.Path, hasToken, public) {
			case RedirectToLogin:
				log.Debug("Guard: redirecting %s to %s", r.URL.Path, LoginPath)
				http.Redirect(w, r, LoginPath, http.StatusFound)
			case Unauthorized:
				log.Debug("Guard: rejecting %s %s without session", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"` + apperr.MessageUnauthorized + `"}`))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
