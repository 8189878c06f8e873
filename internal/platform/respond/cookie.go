// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond

import (
	"net/http"
	"time"

	"github.com/taibuivan/gazette/internal/platform/constants"
)

// SetSessionCookie stores a session token in the cookie that
// middleware.Authenticate falls back to when no Authorization header is sent.
//
// The cookie lives exactly as long as the token. Secure is set outside
// development, where the site is only served over HTTPS.
func SetSessionCookie(writer http.ResponseWriter, token string, lifetime time.Duration, secure bool) {
	http.SetCookie(writer, sessionCookie(token, int(lifetime.Seconds()), secure))
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, sessionCookie("", -1, secure))
}

func sessionCookie(value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
