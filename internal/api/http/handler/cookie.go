package handler

import (
	"net/http"
	"time"

	httpctx "github.com/dtroode/folio-server/internal/api/http/context"
	"github.com/dtroode/folio-server/internal/model"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) set(w http.ResponseWriter, session model.Session) {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = model.SessionTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     httpctx.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpctx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
