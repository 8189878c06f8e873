// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/taibuivan/gazette/internal/platform/apperr"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/ctxutil"
	"github.com/taibuivan/gazette/internal/platform/metrics"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/platform/validate"
	"github.com/taibuivan/gazette/pkg/uuid"
)

// # Contracts & Types

// Tokens is the part of [sec.TokenCodec] the flows rely on.
type Tokens interface {
	SignSession(claims sec.SessionClaims) (string, error)
	SignReset(claims sec.ResetClaims) (string, error)
	VerifyReset(token string) (*sec.ResetClaims, error)
	SignActivation(claims sec.ActivationClaims) (string, error)
	Fingerprint(passwordHash string) string
	TTLs() sec.TokenTTLs
	FingerprintMatches(claimed, passwordHash string) bool
}

// Deps groups the collaborators of [Service].
type Deps struct {
	Directory UserDirectory
	Hasher    sec.PasswordHasher
	Tokens    Tokens
	Notifier  Notifier
	Captcha   validate.Verifier
	Metrics   *metrics.Recorder
}

// Service implements the guest authentication use cases.
//
// Every flow takes the raw request payload and validates it itself, so the
// HTTP layer stays a thin adapter.
type Service struct {
	directory UserDirectory
	hasher    sec.PasswordHasher
	tokens    Tokens
	notifier  Notifier
	metrics   *metrics.Recorder

	registerSpec      validate.Spec
	loginSpec         validate.Spec
	resetLinkSpec     validate.Spec
	resetInfoSpec     validate.Spec
	resetPasswordSpec validate.Spec

	// decoyHash is compared against when a login names an unknown email, so
	// both rejection paths cost one bcrypt comparison.
	decoyHash string

	newID func() string
	now   func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(deps Deps) (*Service, error) {
	decoy, err := deps.Hasher.Hash("decoy-password-never-matches")
	if err != nil {
		return nil, fmt.Errorf("auth_service_decoy_hash_failed: %w", err)
	}

	return &Service{
		directory: deps.Directory,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,

		registerSpec: validate.Spec{
			emailRule(),
			newPasswordRule(),
			confirmationRule(),
			validate.Field(FieldRecaptchaToken,
				validate.That(validate.Verified(deps.Captcha), validate.KeyRecaptchaNotVerify),
			),
		},
		loginSpec: validate.Spec{
			emailRule(),
			validate.Field(FieldPassword, validate.That(validate.NotEmpty(), validate.KeyRequired)),
		},
		resetLinkSpec: validate.Spec{
			emailRule(),
		},
		resetInfoSpec: validate.Spec{
			validate.Field(FieldCode, validate.That(validate.NotEmpty(), validate.KeyRequired)),
		},
		resetPasswordSpec: validate.Spec{
			validate.Field(FieldResetPasswordCode, validate.That(validate.NotEmpty(), validate.KeyRequired)),
			newPasswordRule(),
			confirmationRule(),
		},

		decoyHash: decoy,
		newID:     uuid.New,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// # Validation Specs

func emailRule() validate.Rule {
	return validate.Field(FieldEmail,
		validate.That(validate.NotEmpty(), validate.KeyRequired),
		validate.That(validate.IsEmail(), validate.KeyInvalid),
	)
}

// newPasswordRule caps passwords at bcrypt's input limit.
func newPasswordRule() validate.Rule {
	return validate.Field(FieldPassword,
		validate.That(validate.NotEmpty(), validate.KeyRequired),
		validate.That(validate.MaxBytes(constants.MaxPasswordBytes), validate.KeyTooLong),
	)
}

func confirmationRule() validate.Rule {
	return validate.Field(FieldPasswordConfirmation,
		validate.That(validate.NotEmpty(), validate.KeyRequired),
		validate.That(validate.EqualsField(FieldPassword), validate.KeyInvalid),
	)
}

// # Business Errors

func errUserIsExists() *apperr.AppError {
	return validate.SingleError(FieldEmail, KeyUserIsExists).AppError()
}

func errUserNotFound() *apperr.AppError {
	return validate.SingleError(FieldEmail, KeyUserNotFound).AppError().WithStatus(http.StatusNotFound)
}

func errBadCredentials() *apperr.AppError {
	return validate.SingleError(FieldEmail, KeyUserNotFoundOrBadPassword).AppError()
}

func errBadResetCode() *apperr.AppError {
	return apperr.BadRequest("BAD_RESET_CODE", "bad password reset code")
}

func errInvalidResetCode() *apperr.AppError {
	return validate.SingleError(FieldResetPasswordCode, validate.KeyInvalid).AppError()
}

// # Registration Flow

/*
Register validates the payload and creates a new, not yet activated USER account.

Steps: validate (including CAPTCHA) → reject a taken email → hash → persist →
queue the welcome mail with an activation token. A failed notification is
logged, never returned: the account exists either way.

Returns:
  - *User: the created account
  - error: VALIDATION_ERROR, email/userIsExists, or adapter failures
*/
func (service *Service) Register(ctx context.Context, in validate.Input) (_ *User, err error) {
	defer func() { service.observe(flowRegister, err) }()

	in = normalized(in)
	if err := validate.Run(ctx, service.registerSpec, in).Err(); err != nil {
		return nil, err
	}

	email := in.Value(FieldEmail)
	_, err = service.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, errUserIsExists()
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("auth_register_lookup_failed: %w", err)
	}

	hash, err := service.hasher.Hash(in.Value(FieldPassword))
	if err != nil {
		return nil, fmt.Errorf("auth_register_hash_failed: %w", err)
	}

	now := service.now()
	user := &User{
		ID:           service.newID(),
		Email:        email,
		PasswordHash: hash,
		Role:         sec.RoleUser,
		IsActivated:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent registration can win the race between lookup and insert.
	if err := service.directory.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, errUserIsExists()
		}
		return nil, fmt.Errorf("auth_register_create_failed: %w", err)
	}

	service.sendRegisterNotify(ctx, user)

	return user, nil
}

func (service *Service) sendRegisterNotify(ctx context.Context, user *User) {
	logger := ctxutil.GetLogger(ctx)

	token, err := service.tokens.SignActivation(sec.ActivationClaims{UserID: user.ID, Email: user.Email})
	if err != nil {
		logger.ErrorContext(ctx, "activation_token_sign_failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}

	if err := service.notifier.SendRegisterNotify(ctx, user, token); err != nil {
		logger.WarnContext(ctx, "register_notify_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

// # Authentication Flow

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      *User
}

/*
Login exchanges credentials for a session token.

An unknown email and a wrong password produce the same error, so the
response never reveals which half failed.

Returns:
  - *LoginResult: session token and account
  - error: VALIDATION_ERROR, email/userNotFoundOrBadPassword, or adapter failures
*/
func (service *Service) Login(ctx context.Context, in validate.Input) (_ *LoginResult, err error) {
	defer func() { service.observe(flowLogin, err) }()

	in = normalized(in)
	if err := validate.Run(ctx, service.loginSpec, in).Err(); err != nil {
		return nil, err
	}

	user, err := service.directory.FindByEmail(ctx, in.Value(FieldEmail))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth_login_lookup_failed: %w", err)
	}

	digest := service.decoyHash
	if user != nil {
		digest = user.PasswordHash
	}
	matched := service.hasher.Compare(in.Value(FieldPassword), digest)
	if user == nil || !matched {
		return nil, errBadCredentials()
	}

	token, err := service.tokens.SignSession(sec.SessionClaims{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("auth_login_sign_failed: %w", err)
	}

	return &LoginResult{Token: token, ExpiresIn: service.tokens.TTLs().Session, User: user}, nil
}

// # Password Recovery Flow

/*
RequestResetLink issues a reset token bound to the account's current password
and hands it to the mailer.

The token is returned for callers that need it; the HTTP layer discards it.
A failed notification is returned since the mail is the purpose of the call.

Returns:
  - string: the reset token
  - error: VALIDATION_ERROR, email/userNotFound (404), or adapter failures
*/
func (service *Service) RequestResetLink(ctx context.Context, in validate.Input) (_ string, err error) {
	defer func() { service.observe(flowRequestResetLink, err) }()

	in = normalized(in)
	if err := validate.Run(ctx, service.resetLinkSpec, in).Err(); err != nil {
		return "", err
	}

	user, err := service.directory.FindByEmail(ctx, in.Value(FieldEmail))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", errUserNotFound()
		}
		return "", fmt.Errorf("auth_reset_link_lookup_failed: %w", err)
	}

	token, err := service.tokens.SignReset(sec.ResetClaims{
		UserID:      user.ID,
		Fingerprint: service.tokens.Fingerprint(user.PasswordHash),
	})
	if err != nil {
		return "", fmt.Errorf("auth_reset_link_sign_failed: %w", err)
	}

	if err := service.notifier.SendResetPasswordLinkNotify(ctx, user, token); err != nil {
		return "", fmt.Errorf("auth_reset_link_notify_failed: %w", err)
	}

	return token, nil
}

/*
ResetInfo tells the reset page which account a code belongs to. It never
mutates anything.

Returns:
  - string: the account email
  - error: VALIDATION_ERROR, BAD_RESET_CODE, or adapter failures
*/
func (service *Service) ResetInfo(ctx context.Context, in validate.Input) (_ string, err error) {
	defer func() { service.observe(flowResetInfo, err) }()

	if err := validate.Run(ctx, service.resetInfoSpec, in).Err(); err != nil {
		return "", err
	}

	user, err := service.resetTarget(ctx, in.Value(FieldCode))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errBadResetCode()
	}

	return user.Email, nil
}

/*
ResetPassword sets a new password using a reset code.

Writing the new hash changes the account's fingerprint, which is what makes
this code, and every other outstanding one, unusable afterwards.

Returns:
  - error: VALIDATION_ERROR, resetPasswordCode/fieldInvalid, or adapter failures
*/
func (service *Service) ResetPassword(ctx context.Context, in validate.Input) (err error) {
	defer func() { service.observe(flowResetPassword, err) }()

	if err := validate.Run(ctx, service.resetPasswordSpec, in).Err(); err != nil {
		return err
	}

	user, err := service.resetTarget(ctx, in.Value(FieldResetPasswordCode))
	if err != nil {
		return err
	}
	if user == nil {
		return errInvalidResetCode()
	}

	hash, err := service.hasher.Hash(in.Value(FieldPassword))
	if err != nil {
		return fmt.Errorf("auth_reset_password_hash_failed: %w", err)
	}

	if err := service.directory.UpdatePassword(ctx, user.ID, user.PasswordHash, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errInvalidResetCode()
		}
		return fmt.Errorf("auth_reset_password_update_failed: %w", err)
	}

	return nil
}

// resetTarget resolves the account a reset code may act on.
//
// It returns (nil, nil) for every client-side failure: bad signature, expiry,
// wrong token kind, deleted account, or a password changed since issuance.
func (service *Service) resetTarget(ctx context.Context, code string) (*User, error) {
	claims, err := service.tokens.VerifyReset(code)
	if err != nil {
		return nil, nil
	}

	user, err := service.directory.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth_reset_lookup_failed: %w", err)
	}

	if !service.tokens.FingerprintMatches(claims.Fingerprint, user.PasswordHash) {
		return nil, nil
	}

	return user, nil
}

// # Helpers

// normalized returns a copy of in with the email field normalized.
func normalized(in validate.Input) validate.Input {
	email, ok := in.Fields[FieldEmail]
	if !ok {
		return in
	}
	fields := maps.Clone(in.Fields)
	fields[FieldEmail] = NormalizeEmail(email)
	return validate.Input{Fields: fields, RemoteIP: in.RemoteIP}
}

// observe counts one flow outcome: client-side rejections and server-side
// failures are kept apart.
func (service *Service) observe(flow string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus < http.StatusInternalServerError {
			outcome = metrics.OutcomeRejected
		}
	}
	service.metrics.Flow(flow, outcome)
}
