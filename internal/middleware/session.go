package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"carmine/internal/config"
	"carmine/internal/session"

	"go.uber.org/zap"
)

// SessionHeader lets non-browser clients carry the session id without cookies.
const SessionHeader = "X-Session-ID"

const SessionIDKey contextKey = "session_id"

// SessionMiddleware resolves the visitor's session from the session cookie or
// the X-Session-ID header. Unknown ids are replaced by a fresh session rather
// than adopted. The id is echoed back in both the cookie and the header.
func SessionMiddleware(manager *session.Manager, cfg config.SessionConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	cookieName := sessionCookieName(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				id = c.Value
			}

			sess, err := manager.Load(r.Context(), id)
			if errors.Is(err, session.ErrNotFound) {
				sess = manager.New()
				err = manager.Save(r.Context(), sess)
				if err == nil {
					logger.Debug("Session created", zap.String("session_id", sess.ID))
				}
			}
			if err != nil {
				logger.Error("Session store unavailable", zap.Error(err))
				RespondWithError(w, http.StatusServiceUnavailable, "session store unavailable")
				return
			}

			WriteSessionCookie(w, manager, cfg, sess)

			ctx := context.WithValue(r.Context(), SessionIDKey, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok && id != ""
}

// WriteSessionCookie sets the session cookie and header for sess, replacing a
// session cookie already queued on w. Handlers call it after changing the
// session lifetime, e.g. on a remember-me login.
func WriteSessionCookie(w http.ResponseWriter, manager *session.Manager, cfg config.SessionConfig, sess *session.Session) {
	cookieName := sessionCookieName(cfg)

	queued := w.Header().Values("Set-Cookie")
	kept := queued[:0:0]
	for _, c := range queued {
		if !strings.HasPrefix(c, cookieName+"=") {
			kept = append(kept, c)
		}
	}
	w.Header().Del("Set-Cookie")
	for _, c := range kept {
		w.Header().Add("Set-Cookie", c)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(manager.TTL(sess).Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, sess.ID)
}

func sessionCookieName(cfg config.SessionConfig) string {
	if cfg.CookieName == "" {
		return "carmine_session"
	}
	return cfg.CookieName
}
