// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"context"
	"net/mail"
	"strings"
)

// # Built-in Predicates

// NotEmpty fails if the trimmed value is empty.
func NotEmpty() Predicate {
	return func(_ context.Context, value string, _ Input) bool {
		return strings.TrimSpace(value) != ""
	}
}

// IsEmail fails if the value is not a bare RFC 5322 address ("a@x.com",
// not "Name <a@x.com>").
func IsEmail() Predicate {
	return func(_ context.Context, value string, _ Input) bool {
		address, err := mail.ParseAddress(value)
		return err == nil && address.Address == value
	}
}

// MaxBytes fails if the byte length exceeds max.
//
// bcrypt ignores input past 72 bytes, so password fields are capped in bytes
// rather than characters.
func MaxBytes(max int) Predicate {
	return func(_ context.Context, value string, _ Input) bool {
		return len(value) <= max
	}
}

// EqualsField passes iff the value is byte-for-byte equal to another field.
func EqualsField(other string) Predicate {
	return func(_ context.Context, value string, in Input) bool {
		return value == in.Value(other)
	}
}

// Verifier is an external token verification (e.g. CAPTCHA).
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// Verified asks verifier about the value; an unreachable verifier fails the check.
func Verified(verifier Verifier) Predicate {
	return func(ctx context.Context, value string, in Input) bool {
		return verifier.Verify(ctx, value, in.RemoteIP)
	}
}
