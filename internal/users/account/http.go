// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/gazette/internal/platform/request"
	"github.com/taibuivan/gazette/internal/platform/respond"
)

// Handler implements account endpoints.
type Handler struct {
	accountService *Service
	secureCookie   bool
}

// NewHandler constructs a new [Handler]. secureCookie must match the flag
// the login handler sets the cookie with, or logout cannot replace it.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{accountService: service, secureCookie: secureCookie}
}

// UserRoutes returns the routes of the signed-in area. Mount behind Deny(GUEST).
//
// # Endpoints
//   - GET  /                 : Current account.
//   - POST /change_password  : Replaces the password.
//   - GET  /activate/{token} : Confirms the email.
//   - GET  /user_byid/{id}   : Public profile of any account.
//   - POST /logout           : Drops the session cookie.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getMe)
	router.Post("/change_password", handler.changePassword)
	router.Get("/activate/{token}", handler.activate)
	router.Get("/user_byid/{id}", handler.getPublicUser)
	router.Post("/logout", handler.logout)

	return router
}

// AdminRoutes returns the account routes of the admin console. Mount behind Allow(ADMIN).
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/users/{id}", handler.getUser)

	return router
}

func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Current(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Private())
}

/*
changePassword replaces the caller's password.

POST /api/user/change_password

Request:
  - Body: currentPassword, password, passwordConfirmation

Response:
  - 200: {}
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ChangePassword(request.Context(), claims.UserID, input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Empty)
}

func (handler *Handler) activate(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := requestutil.Param(request, FieldToken)
	if err := handler.accountService.Activate(request.Context(), claims.UserID, token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Empty)
}

// getPublicUser shows another member's profile without email or activation state.
func (handler *Handler) getPublicUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.GetUser(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Public())
}

/*
logout expires the session cookie.

POST /api/user/logout

Sessions are stateless: a token copied elsewhere stays valid until it
expires. Only the browser's cookie is dropped.
*/
func (handler *Handler) logout(writer http.ResponseWriter, _ *http.Request) {
	respond.ClearSessionCookie(writer, handler.secureCookie)
	respond.OK(writer, respond.Empty)
}

func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.accountService.GetUser(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user.Private())
}
