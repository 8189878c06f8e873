// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	google "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gazette/pkg/uuid"
)

func TestNew_IsVersion7AndOrdered(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	parsed, err := google.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, google.Version(7), parsed.Version())
	assert.True(t, uuid.IsValid(first))
	assert.LessOrEqual(t, first[:13], second[:13])
}

func TestIsValid(t *testing.T) {
	assert.False(t, uuid.IsValid(""))
	assert.False(t, uuid.IsValid("42"))
	assert.False(t, uuid.IsValid("{0190a6f0-7a3e-7c2d-9c53-5a6b1e2f3a4b}"))
	assert.True(t, uuid.IsValid("0190a6f0-7a3e-7c2d-9c53-5a6b1e2f3a4b"))
}
