// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/gazette/internal/platform/apperr"
	"github.com/taibuivan/gazette/internal/platform/constants"
	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/platform/validate"
	"github.com/taibuivan/gazette/internal/users/auth"
	"github.com/taibuivan/gazette/pkg/uuid"
)

// Service implements account use cases for authenticated callers.
type Service struct {
	directory  auth.UserDirectory
	hasher     sec.PasswordHasher
	activation ActivationVerifier
	changeSpec validate.Spec
}

// NewService constructs a new [Service].
func NewService(directory auth.UserDirectory, hasher sec.PasswordHasher, activation ActivationVerifier) *Service {
	return &Service{
		directory:  directory,
		hasher:     hasher,
		activation: activation,
		changeSpec: validate.Spec{
			validate.Field(FieldCurrentPassword,
				validate.That(validate.NotEmpty(), validate.KeyRequired),
			),
			validate.Field(FieldPassword,
				validate.That(validate.NotEmpty(), validate.KeyRequired),
				validate.That(validate.MaxBytes(constants.MaxPasswordBytes), validate.KeyTooLong),
			),
			validate.Field(FieldPasswordConfirmation,
				validate.That(validate.NotEmpty(), validate.KeyRequired),
				validate.That(validate.EqualsField(FieldPassword), validate.KeyInvalid),
			),
		},
	}
}

/*
Current loads the caller's own account.

A session whose account has disappeared is treated as unauthenticated.

Returns:
  - *auth.User: the account
  - error: apperr.Unauthorized or storage failures
*/
func (service *Service) Current(ctx context.Context, userID string) (*auth.User, error) {
	user, err := service.directory.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("account_current_failed: %w", err)
	}
	return user, nil
}

/*
ChangePassword replaces the caller's password after checking the current one.

The new hash also voids every reset code issued for the account.

Returns:
  - error: VALIDATION_ERROR (currentPassword/fieldInvalid on a wrong password) or storage failures
*/
func (service *Service) ChangePassword(ctx context.Context, userID string, in validate.Input) error {
	if err := validate.Run(ctx, service.changeSpec, in).Err(); err != nil {
		return err
	}

	user, err := service.Current(ctx, userID)
	if err != nil {
		return err
	}

	if !service.hasher.Compare(in.Value(FieldCurrentPassword), user.PasswordHash) {
		return validate.SingleError(FieldCurrentPassword, validate.KeyInvalid).Err()
	}

	hash, err := service.hasher.Hash(in.Value(FieldPassword))
	if err != nil {
		return fmt.Errorf("account_change_password_hash_failed: %w", err)
	}

	if err := service.directory.UpdatePassword(ctx, user.ID, user.PasswordHash, hash); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return validate.SingleError(FieldCurrentPassword, validate.KeyInvalid).Err()
		}
		return fmt.Errorf("account_change_password_update_failed: %w", err)
	}

	return nil
}

/*
Activate confirms the caller's email with the token from the welcome mail.

The token must name the caller and the caller's current email. Activating an
already active account succeeds.

Returns:
  - error: token/fieldInvalid or storage failures
*/
func (service *Service) Activate(ctx context.Context, userID, token string) error {
	invalid := validate.SingleError(FieldToken, validate.KeyInvalid).Err()

	claims, err := service.activation.VerifyActivation(token)
	if err != nil || claims.UserID != userID {
		return invalid
	}

	user, err := service.Current(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email != claims.Email {
		return invalid
	}
	if user.IsActivated {
		return nil
	}

	if err := service.directory.MarkActivated(ctx, user.ID); err != nil {
		return fmt.Errorf("account_activate_failed: %w", err)
	}
	return nil
}

// GetUser loads any account by ID for the admin console.
func (service *Service) GetUser(ctx context.Context, id string) (*auth.User, error) {
	if !uuid.IsValid(id) {
		return nil, apperr.NotFound("User")
	}

	user, err := service.directory.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("account_get_user_failed: %w", err)
	}
	return user, nil
}
