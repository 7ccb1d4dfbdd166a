package auth

import (
	"net/http"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
)

const (
	// AccessTokenCookie carries the signed JWT for browser clients.
	AccessTokenCookie = "vitrine_access"
	// RefreshTokenCookie carries the opaque refresh token.
	RefreshTokenCookie = "vitrine_refresh"
)

// SetSessionCookies writes the access and refresh cookies on the response.
func SetSessionCookies(w http.ResponseWriter, cfg config.JWTConfig, accessToken, refreshToken string, secure bool) {
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	http.SetCookie(w, sessionCookie(AccessTokenCookie, accessToken, accessTTL, secure))
	http.SetCookie(w, sessionCookie(RefreshTokenCookie, refreshToken, cfg.RefreshTokenTTL(), secure))
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, sessionCookie(AccessTokenCookie, "", -time.Second, secure))
	http.SetCookie(w, sessionCookie(RefreshTokenCookie, "", -time.Second, secure))
}

// ReadAccessToken pulls the JWT from the Authorization header when present,
// falling back to the session cookie.
func ReadAccessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// ReadRefreshToken pulls the refresh token cookie value.
func ReadRefreshToken(r *http.Request) string {
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func sessionCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl / time.Second)
	}
	return cookie
}
