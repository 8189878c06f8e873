// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/gazette/internal/platform/request"
	"github.com/taibuivan/gazette/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the guest HTTP endpoints.
//
// It must be mounted behind the GUEST gate: a signed-in caller has no
// business registering or recovering a password.
type Handler struct {
	authService  *Service
	secureCookie bool
}

// NewHandler constructs a new [Handler] with its service dependency.
//
// secureCookie marks the session cookie set by login as HTTPS-only.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{authService: service, secureCookie: secureCookie}
}

// Routes returns a [chi.Router] configured with the guest routes.
//
// # Endpoints
//   - POST     /user_create                 : Creates a new account.
//   - POST     /user_login                  : Issues a session token.
//   - GET      /reset_password_info         : Resolves a reset code to its email.
//   - GET|POST /request_password_reset_link : Mails a reset code.
//   - POST     /reset_password              : Sets a new password with a reset code.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/user_create", handler.register)
	router.Post("/user_login", handler.login)
	router.Get("/reset_password_info", handler.resetPasswordInfo)
	router.Get("/request_password_reset_link", handler.requestPasswordResetLink)
	router.Post("/request_password_reset_link", handler.requestPasswordResetLink)
	router.Post("/reset_password", handler.resetPassword)

	return router
}

// # Response Payloads

type registerResponse struct {
	User PublicUser `json:"user"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  PrivateUser `json:"user"`
}

type resetInfoResponse struct {
	Email string `json:"email"`
}

/*
register handles the creation of a new user account.

POST /api/guest/user_create

Response:
  - 201: registerResponse (public projection, never the hash)
  - 400: VALIDATION_ERROR, including email/userIsExists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{User: user.Public()})
}

/*
login authenticates a user.

POST /api/guest/user_login

The token is returned in the body for API clients and also set as the
HttpOnly session cookie for the browser site.

Response:
  - 200: loginResponse
  - 400: VALIDATION_ERROR, including email/userNotFoundOrBadPassword
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.SetSessionCookie(writer, result.Token, result.ExpiresIn, handler.secureCookie)
	respond.OK(writer, loginResponse{Token: result.Token, User: result.User.Private()})
}

/*
resetPasswordInfo resolves a reset code.

GET /api/guest/reset_password_info?code=...

Response:
  - 200: resetInfoResponse
  - 400: VALIDATION_ERROR or BAD_RESET_CODE
*/
func (handler *Handler) resetPasswordInfo(writer http.ResponseWriter, request *http.Request) {
	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	email, err := handler.authService.ResetInfo(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resetInfoResponse{Email: email})
}

// requestPasswordResetLink answers {} on success; the code only travels by mail.
func (handler *Handler) requestPasswordResetLink(writer http.ResponseWriter, request *http.Request) {
	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.RequestResetLink(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Empty)
}

func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	input, err := requestutil.Payload(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Empty)
}
