// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Identifiers

// Payload field names shared by the validation specs and the error details.
const (
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "passwordConfirmation"
	FieldRecaptchaToken       = "recaptchaToken"
	FieldCode                 = "code"
	FieldResetPasswordCode    = "resetPasswordCode"
)

// # Business-rule Keys

const (
	KeyUserIsExists              = "userIsExists"
	KeyUserNotFound              = "userNotFound"
	KeyUserNotFoundOrBadPassword = "userNotFoundOrBadPassword"
)

// # Metric Labels

const (
	flowRegister         = "register"
	flowLogin            = "login"
	flowRequestResetLink = "request_reset_link"
	flowResetInfo        = "reset_info"
	flowResetPassword    = "reset_password"
)
