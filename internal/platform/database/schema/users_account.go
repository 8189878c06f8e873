// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by data/migrations,
// so queries never spell an identifier by hand.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table           string
	ID              string
	Email           string
	Password        string
	Role            string
	IsActivated     string
	AvatarURL       string
	CreatedAt       string
	UpdatedAt       string
	EmailConstraint string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:           "users.account",
	ID:              "id",
	Email:           "email",
	Password:        "passwordhash",
	Role:            "role",
	IsActivated:     "isactivated",
	AvatarURL:       "avatarurl",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	EmailConstraint: "account_email_key",
}

// Columns returns all column names in table order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.Role, t.IsActivated,
		t.AvatarURL, t.CreatedAt, t.UpdatedAt,
	}
}
