// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role represents the authorization level of a caller.
//
// The set is closed. [RoleGuest] is never persisted: it is the role of any
// request without a valid session token.
type Role string

const (
	// No valid session on the request
	RoleGuest Role = "GUEST"

	// Default role for registered accounts
	RoleUser Role = "USER"

	// Admin console access
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored or claimed role name onto the closed set.
//
// GUEST is rejected: a token or a database row can never carry it.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleUser, RoleAdmin:
		return Role(name), true
	default:
		return "", false
	}
}

// # Gate Decisions

// AllowRole reports whether a caller may proceed past an allow(required) gate.
func AllowRole(required, caller Role) bool {
	return caller == required
}

// DenyRole reports whether a caller may proceed past a deny(forbidden) gate.
func DenyRole(forbidden, caller Role) bool {
	return caller != forbidden
}
