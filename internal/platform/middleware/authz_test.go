// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gazette/internal/platform/ctxutil"
	"github.com/taibuivan/gazette/internal/platform/metrics"
	"github.com/taibuivan/gazette/internal/platform/middleware"
	"github.com/taibuivan/gazette/internal/platform/sec"
)

// stubVerifier maps raw tokens to claims.
type stubVerifier map[string]*sec.SessionClaims

func (verifier stubVerifier) VerifySession(token string) (*sec.SessionClaims, error) {
	if claims, ok := verifier[token]; ok {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

var tokens = stubVerifier{
	"user-token":  {UserID: "u-1", Role: sec.RoleUser},
	"admin-token": {UserID: "u-2", Role: sec.RoleAdmin},
}

// roleEcho reports the role the handler observed.
var roleEcho = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	_, _ = writer.Write([]byte(ctxutil.CallerRole(request.Context())))
})

/*
TestAuthenticate resolves the caller from header or cookie, degrading to GUEST.
*/
func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   sec.Role
	}{
		{"no_credentials", "", "", sec.RoleGuest},
		{"bearer_user", "Bearer user-token", "", sec.RoleUser},
		{"bearer_case_insensitive", "bearer admin-token", "", sec.RoleAdmin},
		{"cookie_fallback", "", "admin-token", sec.RoleAdmin},
		{"invalid_token_is_guest", "Bearer forged", "", sec.RoleGuest},
		{"wrong_scheme_is_guest", "Basic user-token", "", sec.RoleGuest},
	}

	handler := middleware.Authenticate(tokens)(roleEcho)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "authorization", Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, string(tt.want), recorder.Body.String())
		})
	}
}

/*
TestGates checks 401 for guests, 403 for wrong roles, and that the handler never runs on refusal.
*/
func TestGates(t *testing.T) {
	tests := []struct {
		name   string
		gate   func(sec.Role, *metrics.Recorder) func(http.Handler) http.Handler
		role   sec.Role
		token  string
		status int
		code   string
	}{
		{"admin_area_guest", middleware.Allow, sec.RoleAdmin, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"admin_area_user", middleware.Allow, sec.RoleAdmin, "user-token", http.StatusForbidden, "FORBIDDEN"},
		{"admin_area_admin", middleware.Allow, sec.RoleAdmin, "admin-token", http.StatusOK, ""},
		{"guest_area_guest", middleware.Allow, sec.RoleGuest, "", http.StatusOK, ""},
		{"guest_area_user", middleware.Allow, sec.RoleGuest, "user-token", http.StatusForbidden, "FORBIDDEN"},
		{"user_area_guest", middleware.Deny, sec.RoleGuest, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"user_area_user", middleware.Deny, sec.RoleGuest, "user-token", http.StatusOK, ""},
		{"user_area_admin", middleware.Deny, sec.RoleGuest, "admin-token", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true })
			handler := middleware.Authenticate(tokens)(tt.gate(tt.role, nil)(inner))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				request.Header.Set("Authorization", "Bearer "+tt.token)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.status == http.StatusOK, ran)
			if tt.code != "" {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}
}

/*
TestGates_CountDenials records refusals by reason.
*/
func TestGates_CountDenials(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)
	handler := middleware.Authenticate(tokens)(middleware.Allow(sec.RoleAdmin, recorder)(roleEcho))

	for _, token := range []string{"", "user-token", "user-token"} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
		handler.ServeHTTP(httptest.NewRecorder(), request)
	}

	count, err := testutil.GatherAndCount(reg, "gazette_access_denied_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
