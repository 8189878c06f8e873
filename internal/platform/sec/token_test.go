// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gazette/internal/platform/sec"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	testTTLs   = sec.TokenTTLs{Session: 24 * time.Hour, Reset: 30 * time.Minute, Activation: 72 * time.Hour}
	issuedAt   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// fakeClock is a settable clock shared between signing and verification.
type fakeClock struct{ now time.Time }

func (clock *fakeClock) Now() time.Time { return clock.now }

func newCodec(t *testing.T, clock *fakeClock) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec(testSecret, "gazette.test", testTTLs, sec.WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_RejectsWeakSecret ensures the codec cannot be built without a real secret.
*/
func TestNewTokenCodec_RejectsWeakSecret(t *testing.T) {
	for _, secret := range [][]byte{nil, []byte(""), []byte("short-secret")} {
		_, err := sec.NewTokenCodec(secret, "gazette.test", testTTLs)
		assert.ErrorIs(t, err, sec.ErrWeakSecret)
	}

	_, err := sec.NewTokenCodec(testSecret, "gazette.test", sec.TokenTTLs{Session: time.Hour})
	assert.Error(t, err)
}

/*
TestSession_RoundTripWithinWindow verifies claims survive for every instant in [iat, exp).
*/
func TestSession_RoundTripWithinWindow(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newCodec(t, clock)

	want := sec.SessionClaims{
		UserID:    "0195a1b2-0000-7000-8000-000000000001",
		Role:      sec.RoleAdmin,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(time.Hour),
	}
	token, err := codec.SignSession(want)
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Second, 30 * time.Minute, time.Hour - time.Second} {
		clock.now = issuedAt.Add(offset)

		got, err := codec.VerifySession(token)
		require.NoError(t, err, "offset %s", offset)
		assert.Equal(t, want.UserID, got.UserID)
		assert.Equal(t, want.Role, got.Role)
		assert.True(t, want.IssuedAt.Equal(got.IssuedAt))
		assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	}

	for _, offset := range []time.Duration{time.Hour, time.Hour + time.Second, 48 * time.Hour} {
		clock.now = issuedAt.Add(offset)

		_, err := codec.VerifySession(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken, "offset %s", offset)
	}
}

/*
TestSession_DefaultsToConfiguredLifetime checks that unset timestamps come from the clock and TTL.
*/
func TestSession_DefaultsToConfiguredLifetime(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newCodec(t, clock)

	token, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser})
	require.NoError(t, err)

	got, err := codec.VerifySession(token)
	require.NoError(t, err)
	assert.True(t, issuedAt.Equal(got.IssuedAt))
	assert.True(t, issuedAt.Add(testTTLs.Session).Equal(got.ExpiresAt))
}

/*
TestSession_FractionalClockKeepsFullLifetime signs at a sub-second instant and
checks the claims read back unchanged and stay valid for the whole lifetime.
*/
func TestSession_FractionalClockKeepsFullLifetime(t *testing.T) {
	signedAt := issuedAt.Add(600 * time.Millisecond)
	clock := &fakeClock{now: signedAt}
	codec := newCodec(t, clock)

	token, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser})
	require.NoError(t, err)

	got, err := codec.VerifySession(token)
	require.NoError(t, err)
	assert.True(t, issuedAt.Equal(got.IssuedAt), "iat %s", got.IssuedAt)
	assert.Equal(t, testTTLs.Session, got.ExpiresAt.Sub(got.IssuedAt))

	// Signing the read-back claims again yields the same claims.
	again, err := codec.SignSession(*got)
	require.NoError(t, err)
	regot, err := codec.VerifySession(again)
	require.NoError(t, err)
	assert.Equal(t, got, regot)

	clock.now = got.ExpiresAt.Add(-time.Millisecond)
	_, err = codec.VerifySession(token)
	assert.NoError(t, err)

	clock.now = got.ExpiresAt
	_, err = codec.VerifySession(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestSign_RejectsSubSecondTimestamps refuses explicit instants the token cannot carry.
*/
func TestSign_RejectsSubSecondTimestamps(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})
	fractional := issuedAt.Add(250 * time.Millisecond)

	_, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser, IssuedAt: fractional})
	assert.Error(t, err)

	_, err = codec.SignReset(sec.ResetClaims{UserID: "u-1", Fingerprint: "fp", ExpiresAt: fractional.Add(time.Hour)})
	assert.Error(t, err)

	_, err = codec.SignActivation(sec.ActivationClaims{UserID: "u-1", Email: "a@x.com", IssuedAt: fractional})
	assert.Error(t, err)
}

/*
TestSession_RejectsTokenBeforeIssuance checks the lower bound of the validity window.
*/
func TestSession_RejectsTokenBeforeIssuance(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newCodec(t, clock)

	token, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser})
	require.NoError(t, err)

	clock.now = issuedAt.Add(-time.Minute)
	_, err = codec.VerifySession(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestSignSession_RejectsGuestAndEmptySubject ensures nonsensical sessions are never minted.
*/
func TestSignSession_RejectsGuestAndEmptySubject(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	_, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleGuest})
	assert.Error(t, err)

	_, err = codec.SignSession(sec.SessionClaims{Role: sec.RoleUser})
	assert.Error(t, err)
}

/*
TestVerify_TamperedTokenFails flips every character of a signed token in turn.
*/
func TestVerify_TamperedTokenFails(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	token, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser})
	require.NoError(t, err)

	for index := range token {
		replacement := byte('A')
		if token[index] == 'A' {
			replacement = 'B'
		}
		tampered := token[:index] + string(replacement) + token[index+1:]

		_, err := codec.VerifySession(tampered)
		assert.ErrorIs(t, err, sec.ErrInvalidToken, "index %d", index)
	}
}

/*
TestVerify_ForeignSecretFails ensures tokens from another deployment are rejected.
*/
func TestVerify_ForeignSecretFails(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newCodec(t, clock)

	other, err := sec.NewTokenCodec([]byte(strings.Repeat("z", 32)), "gazette.test", testTTLs, sec.WithClock(clock.Now))
	require.NoError(t, err)

	token, err := other.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleAdmin})
	require.NoError(t, err)

	_, err = codec.VerifySession(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestVerify_MalformedInput covers garbage the transport layer may hand over.
*/
func TestVerify_MalformedInput(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	for _, token := range []string{"", "abc", "a.b.c", "..", "eyJhbGciOiJub25lIn0.e30."} {
		_, err := codec.VerifySession(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken, "token %q", token)

		_, err = codec.VerifyReset(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken, "token %q", token)
	}
}

/*
TestTokenKinds_AreNotInterchangeable verifies each kind only passes its own entry point.
*/
func TestTokenKinds_AreNotInterchangeable(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	session, err := codec.SignSession(sec.SessionClaims{UserID: "u-1", Role: sec.RoleUser})
	require.NoError(t, err)
	reset, err := codec.SignReset(sec.ResetClaims{UserID: "u-1", Fingerprint: codec.Fingerprint("$2a$hash")})
	require.NoError(t, err)
	activation, err := codec.SignActivation(sec.ActivationClaims{UserID: "u-1", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = codec.VerifySession(reset)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
	_, err = codec.VerifySession(activation)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = codec.VerifyReset(session)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
	_, err = codec.VerifyReset(activation)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = codec.VerifyActivation(session)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
	_, err = codec.VerifyActivation(reset)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestReset_RoundTripAndExpiry checks the short reset lifetime.
*/
func TestReset_RoundTripAndExpiry(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newCodec(t, clock)

	fingerprint := codec.Fingerprint("$2a$10$stored")
	token, err := codec.SignReset(sec.ResetClaims{UserID: "u-7", Fingerprint: fingerprint})
	require.NoError(t, err)

	got, err := codec.VerifyReset(token)
	require.NoError(t, err)
	assert.Equal(t, "u-7", got.UserID)
	assert.Equal(t, fingerprint, got.Fingerprint)

	clock.now = issuedAt.Add(testTTLs.Reset)
	_, err = codec.VerifyReset(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestFingerprint_TracksPasswordHash verifies the single-use property at the codec level.
*/
func TestFingerprint_TracksPasswordHash(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	before := codec.Fingerprint("$2a$10$before")

	assert.Equal(t, before, codec.Fingerprint("$2a$10$before"))
	assert.True(t, codec.FingerprintMatches(before, "$2a$10$before"))
	assert.False(t, codec.FingerprintMatches(before, "$2a$10$after"))
	assert.False(t, codec.FingerprintMatches("", "$2a$10$before"))
	assert.NotContains(t, before, "before")
}

/*
TestActivation_RoundTrip checks the activation kind carries its email.
*/
func TestActivation_RoundTrip(t *testing.T) {
	codec := newCodec(t, &fakeClock{now: issuedAt})

	token, err := codec.SignActivation(sec.ActivationClaims{UserID: "u-3", Email: "a@x.com"})
	require.NoError(t, err)

	got, err := codec.VerifyActivation(token)
	require.NoError(t, err)
	assert.Equal(t, "u-3", got.UserID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, issuedAt.Add(testTTLs.Activation).Equal(got.ExpiresAt))
}
