// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the guest-side identity flows: registration, login
and password recovery.

# Architecture

  - Service: orchestrates validation, hashing, token issuance and directory access.
  - Store: the [UserDirectory] and [Notifier] contracts with their Postgres and
    Redis implementations.
  - Handler: the HTTP delivery layer mounted behind the GUEST gate.

Tokens are stateless. A reset token stays usable only while the password it
was issued against is current, which makes it single-use without any
server-side bookkeeping.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/taibuivan/gazette/internal/platform/sec"
)

// # Domain Entities

// User is a registered account as stored in the directory.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         sec.Role
	IsActivated  bool
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is what anyone may learn about an account.
type PublicUser struct {
	ID        string    `json:"id"`
	Role      sec.Role  `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PrivateUser is what the account owner (or an admin) sees. It never carries
// the password hash.
type PrivateUser struct {
	PublicUser
	Email       string `json:"email"`
	IsActivated bool   `json:"isActivated"`
}

// Public projects the user for anonymous consumers.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// Private projects the user for its owner.
func (u *User) Private() PrivateUser {
	return PrivateUser{
		PublicUser:  u.Public(),
		Email:       u.Email,
		IsActivated: u.IsActivated,
	}
}

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}
