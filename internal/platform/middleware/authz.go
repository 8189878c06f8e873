// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/gazette/internal/platform/apperr"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/ctxutil"
	"github.com/taibuivan/gazette/internal/platform/metrics"
	"github.com/taibuivan/gazette/internal/platform/respond"
	"github.com/taibuivan/gazette/internal/platform/sec"
)

// TokenVerifier defines what [Authenticate] needs from the token codec.
//
// Defining it here decouples the middleware from [sec.TokenCodec] so tests
// can inject a stub.
type TokenVerifier interface {
	VerifySession(token string) (*sec.SessionClaims, error)
}

// Authenticate resolves the caller identity from the session token.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>', falling back to the auth cookie.
//  2. If absent, malformed, expired or forged, the request proceeds as GUEST.
//  3. Otherwise attach the verified [*sec.SessionClaims] to the context.
//
// It never rejects a request; rejecting is the job of [Allow] and [Deny].
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := bearerToken(request)
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifySession(token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "session_token_rejected",
					"error", err.Error(),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// Handler logs from here on carry the caller.
			logger := ctxutil.GetLogger(request.Context()).With("user_id", claims.UserID)
			ctx := ctxutil.WithLogger(ctxutil.WithSession(request.Context(), claims), logger)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// Allow lets the request through only when the caller's role equals role.
//
// Mount it after [Authenticate]. A GUEST caller that is refused gets 401,
// anyone else gets 403; the wrapped handler never runs on refusal.
func Allow(role sec.Role, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return gate(func(caller sec.Role) bool { return sec.AllowRole(role, caller) }, recorder)
}

// Deny lets the request through only when the caller's role differs from role.
func Deny(role sec.Role, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return gate(func(caller sec.Role) bool { return sec.DenyRole(role, caller) }, recorder)
}

func gate(proceed func(caller sec.Role) bool, recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			caller := ctxutil.CallerRole(request.Context())
			if proceed(caller) {
				next.ServeHTTP(writer, request)
				return
			}

			if caller == sec.RoleGuest {
				recorder.Denied(metrics.DenyUnauthenticated)
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			recorder.Denied(metrics.DenyForbidden)
			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
		})
	}
}

// bearerToken returns the raw token, or "" if the request carries none.
func bearerToken(request *http.Request) string {
	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}

	if cookie, err := request.Cookie(constants.AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
