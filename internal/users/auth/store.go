// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

var (
	// ErrUserNotFound is returned by directory lookups that match nothing.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrEmailTaken is returned by [UserDirectory.Create] on a duplicate email.
	ErrEmailTaken = errors.New("auth: email already registered")
)

// # User Data Access

// UserDirectory is the persistent store of accounts.
type UserDirectory interface {

	/*
		FindByEmail returns the account with the given normalized email.

		Returns:
		  - *User: hydrated entity
		  - error: ErrUserNotFound, or storage failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the account with the given ID, or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		Create persists a brand-new account in one atomic write.

		Returns:
		  - error: ErrEmailTaken when the email is already registered
	*/
	Create(ctx context.Context, user *User) error

	/*
		UpdatePassword swaps the password hash from currentHash to newHash in one
		conditional write. This is what invalidates outstanding reset tokens.

		Returns:
		  - error: ErrUserNotFound when no account has userID and currentHash
		    (deleted, or its password changed in between)
	*/
	UpdatePassword(ctx context.Context, userID, currentHash, newHash string) error

	// MarkActivated flags the account as having confirmed its email.
	MarkActivated(ctx context.Context, userID string) error
}

// # Notifications

// Notifier hands messages to the out-of-process mailer.
type Notifier interface {
	SendRegisterNotify(ctx context.Context, user *User, activationToken string) error
	SendResetPasswordLinkNotify(ctx context.Context, user *User, resetToken string) error
}
