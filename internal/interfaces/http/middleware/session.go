package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/session"
)

const (
	SessionHeader     = "X-Dashboard-Session"
	SessionCookieName = "dashboard_session"
)

type sessionKey struct{}

// Session resolves the dashboard session from the header or cookie and
// creates one when it is missing or unknown. The effective id is echoed in
// the response header and cookie.
func Session(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested := strings.TrimSpace(r.Header.Get(SessionHeader))
			if requested == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					requested = strings.TrimSpace(c.Value)
				}
			}

			sess, _ := store.GetOrCreate(requested)
			sess.Touch(time.Now())

			w.Header().Set(SessionHeader, sess.ID())
			if sess.ID() != requested {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sess.ID(),
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFrom(ctx context.Context) *session.DashboardSession {
	sess, _ := ctx.Value(sessionKey{}).(*session.DashboardSession)
	return sess
}

// WithSession is for tests and callers that resolve the session themselves.
func WithSession(ctx context.Context, sess *session.DashboardSession) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}
