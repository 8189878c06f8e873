// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/gazette/internal/platform/database/schema"
	"github.com/taibuivan/gazette/internal/platform/dberr"
	"github.com/taibuivan/gazette/internal/platform/sec"
)

// DB is the subset of [pgxpool.Pool] the directory needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # User Directory

// PostgresDirectory implements [UserDirectory] on the users.account table.
type PostgresDirectory struct {
	db DB
}

// NewPostgresDirectory creates a new PostgreSQL implementation of the [UserDirectory].
func NewPostgresDirectory(db DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

var selectAccount = fmt.Sprintf(`
	SELECT %s, %s, %s, %s, %s, COALESCE(%s, ''), %s, %s
	FROM %s`,
	schema.UserAccount.ID,
	schema.UserAccount.Email,
	schema.UserAccount.Password,
	schema.UserAccount.Role,
	schema.UserAccount.IsActivated,
	schema.UserAccount.AvatarURL,
	schema.UserAccount.CreatedAt,
	schema.UserAccount.UpdatedAt,
	schema.UserAccount.Table,
)

/*
Create persists a new user record into the users.account table.

Parameters:
  - ctx: context.Context
  - user: *User (timestamps are initialized when zero)

Returns:
  - error: ErrEmailTaken on a duplicate email, or connectivity errors
*/
func (directory *PostgresDirectory) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID,
		schema.UserAccount.Email,
		schema.UserAccount.Password,
		schema.UserAccount.Role,
		schema.UserAccount.IsActivated,
		schema.UserAccount.CreatedAt,
		schema.UserAccount.UpdatedAt,
	)

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	_, err := directory.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.IsActivated,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err, schema.UserAccount.EmailConstraint) {
			return ErrEmailTaken
		}
		return dberr.Wrap(err, "create account")
	}

	return nil
}

// FindByEmail retrieves an account by its normalized email.
func (directory *PostgresDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	return directory.findOne(ctx, fmt.Sprintf("%s WHERE %s = $1", selectAccount, schema.UserAccount.Email), email)
}

// FindByID retrieves an account by its ID.
func (directory *PostgresDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	return directory.findOne(ctx, fmt.Sprintf("%s WHERE %s = $1", selectAccount, schema.UserAccount.ID), id)
}

func (directory *PostgresDirectory) findOne(ctx context.Context, query string, arg string) (*User, error) {
	var (
		user User
		role string
	)

	err := directory.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsActivated,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, "find account")
	}

	parsed, ok := sec.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("postgres: account %s has unknown role %q", user.ID, role)
	}
	user.Role = parsed

	return &user, nil
}

// UpdatePassword replaces the password hash of one account, provided it is
// still currentHash.
func (directory *PostgresDirectory) UpdatePassword(ctx context.Context, userID, currentHash, newHash string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = NOW()
		WHERE %s = $1 AND %s = $2`,
		schema.UserAccount.Table,
		schema.UserAccount.Password,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
		schema.UserAccount.Password,
	)

	return directory.execOne(ctx, "update password", query, userID, currentHash, newHash)
}

// MarkActivated flags an account as activated. Activating twice is harmless.
func (directory *PostgresDirectory) MarkActivated(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = NOW()
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.IsActivated,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	return directory.execOne(ctx, "mark activated", query, userID)
}

func (directory *PostgresDirectory) execOne(ctx context.Context, action, query string, args ...any) error {
	tag, err := directory.db.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
