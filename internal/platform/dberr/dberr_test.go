// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/gazette/internal/platform/dberr"
)

func TestClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_email_key"}
	wrapped := fmt.Errorf("insert: %w", unique)

	assert.True(t, dberr.IsUniqueViolation(wrapped, ""))
	assert.True(t, dberr.IsUniqueViolation(wrapped, "account_email_key"))
	assert.False(t, dberr.IsUniqueViolation(wrapped, "account_pkey"))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, ""))
	assert.False(t, dberr.IsUniqueViolation(errors.New("plain"), ""))

	assert.True(t, dberr.IsNotFound(dberr.Wrap(pgx.ErrNoRows, "find")))
	assert.False(t, dberr.IsNotFound(errors.New("plain")))
	assert.NoError(t, dberr.Wrap(nil, "find"))
}
