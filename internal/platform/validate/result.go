// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"github.com/taibuivan/gazette/internal/platform/apperr"
)

// Result maps field names to their ordered error keys.
//
// Field order is first-insertion order; key order is check order. The zero
// value is an empty, valid result. Result is not safe for concurrent writes.
type Result struct {
	fields []string
	errs   map[string][]string
}

// SingleError builds a result carrying exactly one field/key pair.
//
// It reports business-rule failures found after structural validation passed
// (e.g. "userIsExists").
func SingleError(field, key string) *Result {
	result := &Result{}
	result.Add(field, key)
	return result
}

// Add appends key to the field's error list.
func (r *Result) Add(field, key string) {
	if r.errs == nil {
		r.errs = make(map[string][]string)
	}
	if _, seen := r.errs[field]; !seen {
		r.fields = append(r.fields, field)
	}
	r.errs[field] = append(r.errs[field], key)
}

// Errors returns the keys recorded for field.
func (r *Result) Errors(field string) []string {
	return r.errs[field]
}

// Fields returns the fields with at least one error, in insertion order.
func (r *Result) Fields() []string {
	return r.fields
}

// TotalErrors is the sum of every field's error count.
func (r *Result) TotalErrors() int {
	total := 0
	for _, keys := range r.errs {
		total += len(keys)
	}
	return total
}

// Valid reports whether no error was recorded.
func (r *Result) Valid() bool {
	return r.TotalErrors() == 0
}

// Err returns nil for a valid result, otherwise a VALIDATION_ERROR
// [apperr.AppError] listing one detail per key.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r.AppError()
}

// AppError renders the result as a VALIDATION_ERROR regardless of validity.
func (r *Result) AppError() *apperr.AppError {
	details := make([]apperr.FieldError, 0, r.TotalErrors())
	for _, field := range r.fields {
		for _, key := range r.errs[field] {
			details = append(details, apperr.FieldError{Field: field, Message: key})
		}
	}
	return apperr.ValidationError("Validation failed", details...)
}
