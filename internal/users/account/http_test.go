// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gazette/internal/platform/ctxutil"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/users/account"
)

func asCaller(request *http.Request) *http.Request {
	ctx := ctxutil.WithSession(request.Context(), &sec.SessionClaims{UserID: userID, Role: sec.RoleUser})
	return request.WithContext(ctx)
}

/*
TestHandler_Me returns the private projection without the hash.
*/
func TestHandler_Me(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, false).UserRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asCaller(httptest.NewRequest(http.MethodGet, "/", nil)))

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "a@x.com", body.Data["email"])
	assert.NotContains(t, recorder.Body.String(), "$2a$")
}

/*
TestHandler_GuestIsRejected never reaches the service without a session.
*/
func TestHandler_GuestIsRejected(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, false).UserRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_ChangePassword decodes the body and answers {}.
*/
func TestHandler_ChangePassword(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, false).UserRoutes()

	request := httptest.NewRequest(http.MethodPost, "/change_password",
		strings.NewReader(`{"currentPassword":"Secret123","password":"N3wSecret","passwordConfirmation":"N3wSecret"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, asCaller(request))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{}}`, recorder.Body.String())
}

/*
TestHandler_AdminGetUser looks an account up by path ID.
*/
func TestHandler_AdminGetUser(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, false).AdminRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/"+userID, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/nope", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestHandler_PublicUserById hides the private fields of another account.
*/
func TestHandler_PublicUserById(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, false).UserRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asCaller(httptest.NewRequest(http.MethodGet, "/user_byid/"+userID, nil)))

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, userID, body.Data["id"])
	assert.NotContains(t, body.Data, "email")
	assert.NotContains(t, body.Data, "isActivated")

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, asCaller(httptest.NewRequest(http.MethodGet, "/user_byid/nope", nil)))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestHandler_LogoutExpiresCookie drops the browser session.
*/
func TestHandler_LogoutExpiresCookie(t *testing.T) {
	fx := newFixture(t)
	router := account.NewHandler(fx.service, true).UserRoutes()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asCaller(httptest.NewRequest(http.MethodPost, "/logout", nil)))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{}}`, recorder.Body.String())

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "authorization", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}
