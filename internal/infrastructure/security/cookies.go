package security

import (
	"net/http"
	"time"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// SetAccessToken stores the access token for browser page loads (GET /admin).
func SetAccessToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	setCookie(w, AccessCookieName, token, int(ttl.Seconds()), secure)
}

func SetRefreshToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	setCookie(w, RefreshCookieName, token, int(ttl.Seconds()), secure)
}

// ClearTokens expires both session cookies.
func ClearTokens(w http.ResponseWriter, secure bool) {
	setCookie(w, AccessCookieName, "", -1, secure)
	setCookie(w, RefreshCookieName, "", -1, secure)
}

func ReadAccessToken(r *http.Request) (string, bool) {
	return readCookie(r, AccessCookieName)
}

func ReadRefreshToken(r *http.Request) (string, bool) {
	return readCookie(r, RefreshCookieName)
}

func cookieName(name string, secure bool) string {
	if secure {
		return "__Host-" + name
	}
	return name
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(name, secure),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure, // prod=true, dev=false
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func readCookie(r *http.Request, name string) (string, bool) {
	if c, err := r.Cookie(cookieName(name, true)); err == nil && c.Value != "" {
		return c.Value, true
	}
	// plain name for local http development
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
