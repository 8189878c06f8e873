// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles what a signed-in caller can do with an account:
read it, change its password, confirm its email, and, for admins, look up
other accounts.

# Architecture

  - Domain: this package reuses the auth package's User entity and directory.
  - Security: every entry point trusts the session already verified by the
    access gate; nothing here parses session tokens.
*/
package account

import (
	"github.com/taibuivan/gazette/internal/platform/sec"
)

// # Field Identifiers

const (
	FieldCurrentPassword      = "currentPassword"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "passwordConfirmation"
	FieldToken                = "token"
)

// ActivationVerifier is the part of [sec.TokenCodec] used by [Service.Activate].
type ActivationVerifier interface {
	VerifyActivation(token string) (*sec.ActivationClaims, error)
}
