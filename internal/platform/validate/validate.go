// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate runs declarative, per-field check chains over a request
// payload and collects symbolic error keys.
//
// # Architecture
//
// A [Spec] lists fields in order; each field owns an ordered chain of
// [Check]s. [Run] evaluates every field concurrently, while the checks of one
// field run one after another and stop at the first failure, since later
// checks usually assume earlier ones passed (e.g. "matches password" after
// "not empty").
//
// Errors are message keys such as "fieldRequired", never localized text; the
// client renders them in its own locale.
package validate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/gazette/internal/platform/apperr"
)

// # Message Keys

const (
	KeyRequired           = "fieldRequired"
	KeyInvalid            = "fieldInvalid"
	KeyTooLong            = "fieldTooLong"
	KeyRecaptchaNotVerify = "recaptchaNotVerify"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// # Definitions

// Input is everything a check may look at: the decoded payload fields and
// ambient request data.
type Input struct {
	// Fields holds query and body values by name.
	Fields map[string]string

	// RemoteIP is the client address, forwarded to external verifications.
	RemoteIP string
}

// Value returns the named field, or "" when absent.
func (in Input) Value(field string) string {
	return in.Fields[field]
}

// Predicate reports whether value passes. It may block on external calls and
// should honour ctx; a failed or cancelled call simply reports false.
type Predicate func(ctx context.Context, value string, in Input) bool

// Check pairs a predicate with the key recorded when it fails.
type Check struct {
	Predicate Predicate
	Message   string
}

// Rule is the ordered check chain of one field.
type Rule struct {
	Field  string
	Checks []Check
}

// Spec is the ordered list of field rules of one request shape.
type Spec []Rule

// Field builds a [Rule].
func Field(name string, checks ...Check) Rule {
	return Rule{Field: name, Checks: checks}
}

// That builds a [Check].
func That(predicate Predicate, message string) Check {
	return Check{Predicate: predicate, Message: message}
}

// # Engine

// Run evaluates spec against in.
//
// Fields are independent and run concurrently; each writes only its own slot,
// and the result is assembled in spec order.
func Run(ctx context.Context, spec Spec, in Input) *Result {
	slots := make([][]string, len(spec))

	var group errgroup.Group
	for index, rule := range spec {
		group.Go(func() error {
			slots[index] = runRule(ctx, rule, in)
			return nil
		})
	}
	_ = group.Wait()

	result := &Result{}
	for index, rule := range spec {
		for _, key := range slots[index] {
			result.Add(rule.Field, key)
		}
	}
	return result
}

// runRule stops at the first failing check of the field.
func runRule(ctx context.Context, rule Rule, in Input) []string {
	value := in.Value(rule.Field)
	for _, check := range rule.Checks {
		if !check.Predicate(ctx, value, in) {
			return []string{check.Message}
		}
	}
	return nil
}
