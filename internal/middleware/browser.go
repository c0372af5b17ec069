package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	BrowserKey contextKey = "browser"

	// BrowserCookie identifies one browser; it scopes uploads, results and
	// the stored sign-in profile.
	BrowserCookie = "genefit_browser"
)

// BrowserIdentity makes sure every request carries a browser id, issuing a
// fresh cookie when the request has none or an invalid one.
func BrowserIdentity(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(BrowserCookie); err == nil {
				if u, err := uuid.Parse(c.Value); err == nil {
					id = u.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     BrowserCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   365 * 24 * 60 * 60,
				})
			}
			ctx := context.WithValue(r.Context(), BrowserKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BrowserFromContext extracts the browser id from context
func BrowserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(BrowserKey).(string); ok {
		return id
	}
	return ""
}
