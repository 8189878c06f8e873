// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives, roles and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. The flows consume it through small interfaces so tests can
// inject fixed secrets and clocks.
//
// # Token Kinds
//
// All tokens are HS256 JWTs signed with one process-wide secret. Each kind has
// its own audience and its own mandatory claim, so a token minted for one
// purpose never verifies through another entry point:
//
//   - session        (aud "session", claim "rol")
//   - password reset (aud "password_reset", claim "fpr")
//   - activation     (aud "activation", claim "eml")
//
// Tokens are never stored server-side. Reset tokens are made single-use by the
// password fingerprint they carry; see [TokenCodec.Fingerprint].
package sec

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest signing secret accepted by [NewTokenCodec].
const MinSecretLength = 32

const (
	audienceSession    = "session"
	audienceReset      = "password_reset"
	audienceActivation = "activation"

	fingerprintLength = 16
	fingerprintLabel  = "gazette/password-fingerprint/v1:"
)

var (
	// ErrInvalidToken is returned for every verification failure: malformed
	// input, bad signature, expired or premature timestamps, wrong kind.
	ErrInvalidToken = errors.New("sec: invalid token")

	// ErrWeakSecret is returned when the signing secret is missing or too short.
	ErrWeakSecret = fmt.Errorf("sec: signing secret must be at least %d bytes", MinSecretLength)
)

// # Claims

// SessionClaims identify the caller of an authenticated request.
type SessionClaims struct {
	UserID    string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ResetClaims authorize exactly one password change for UserID.
//
// Fingerprint is derived from the password hash current at issuance; once the
// hash changes the claims no longer match the account.
type ResetClaims struct {
	UserID      string
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// ActivationClaims confirm ownership of the address an account registered with.
type ActivationClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Wire shapes. Custom claims are abbreviated to keep tokens small.
type sessionWire struct {
	jwt.RegisteredClaims
	Role string `json:"rol,omitempty"`
}

type resetWire struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"fpr,omitempty"`
}

type activationWire struct {
	jwt.RegisteredClaims
	Email string `json:"eml,omitempty"`
}

// # Codec

// TokenTTLs holds the lifetime of each token kind.
type TokenTTLs struct {
	Session    time.Duration
	Reset      time.Duration
	Activation time.Duration
}

// TokenCodec signs and verifies every token kind.
//
// It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	issuer string
	ttls   TokenTTLs
	now    func() time.Time
}

// CodecOption customizes a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(codec *TokenCodec) {
		codec.now = now
	}
}

// NewTokenCodec creates a codec bound to secret.
//
// It refuses secrets shorter than [MinSecretLength] and non-positive TTLs;
// the process must not start with either.
func NewTokenCodec(secret []byte, issuer string, ttls TokenTTLs, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttls.Session <= 0 || ttls.Reset <= 0 || ttls.Activation <= 0 {
		return nil, fmt.Errorf("sec: token lifetimes must be positive: %+v", ttls)
	}

	codec := &TokenCodec{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		ttls:   ttls,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

// TTLs returns the configured token lifetimes.
func (codec *TokenCodec) TTLs() TokenTTLs {
	return codec.ttls
}

// # Session Tokens

// SignSession signs session claims.
//
// Zero IssuedAt defaults to now, truncated to the second, and zero ExpiresAt
// to IssuedAt plus the session lifetime. Explicit timestamps must be whole
// seconds.
func (codec *TokenCodec) SignSession(claims SessionClaims) (string, error) {
	if claims.UserID == "" {
		return "", errors.New("sec: session claims need a subject")
	}
	if _, ok := ParseRole(string(claims.Role)); !ok {
		return "", fmt.Errorf("sec: session claims carry an unknown role %q", claims.Role)
	}

	issuedAt, expiresAt, err := codec.window(claims.IssuedAt, claims.ExpiresAt, codec.ttls.Session)
	if err != nil {
		return "", err
	}
	return codec.sign(sessionWire{
		RegisteredClaims: codec.registered(claims.UserID, audienceSession, issuedAt, expiresAt),
		Role:             string(claims.Role),
	})
}

// VerifySession returns the claims of a valid session token.
func (codec *TokenCodec) VerifySession(token string) (*SessionClaims, error) {
	wire := &sessionWire{}
	if err := codec.parse(token, audienceSession, wire); err != nil {
		return nil, err
	}

	role, ok := ParseRole(wire.Role)
	if !ok {
		return nil, fmt.Errorf("%w: missing or unknown role", ErrInvalidToken)
	}

	return &SessionClaims{
		UserID:    wire.Subject,
		Role:      role,
		IssuedAt:  wire.IssuedAt.UTC(),
		ExpiresAt: wire.ExpiresAt.UTC(),
	}, nil
}

// # Password Reset Tokens

// SignReset signs reset claims. Timestamps default like [TokenCodec.SignSession].
func (codec *TokenCodec) SignReset(claims ResetClaims) (string, error) {
	if claims.UserID == "" || claims.Fingerprint == "" {
		return "", errors.New("sec: reset claims need a subject and a fingerprint")
	}

	issuedAt, expiresAt, err := codec.window(claims.IssuedAt, claims.ExpiresAt, codec.ttls.Reset)
	if err != nil {
		return "", err
	}
	return codec.sign(resetWire{
		RegisteredClaims: codec.registered(claims.UserID, audienceReset, issuedAt, expiresAt),
		Fingerprint:      claims.Fingerprint,
	})
}

// VerifyReset returns the claims of a valid reset token.
//
// It does not consult the account; callers must still compare the fingerprint
// with [TokenCodec.FingerprintMatches].
func (codec *TokenCodec) VerifyReset(token string) (*ResetClaims, error) {
	wire := &resetWire{}
	if err := codec.parse(token, audienceReset, wire); err != nil {
		return nil, err
	}

	if wire.Fingerprint == "" {
		return nil, fmt.Errorf("%w: missing fingerprint", ErrInvalidToken)
	}

	return &ResetClaims{
		UserID:      wire.Subject,
		Fingerprint: wire.Fingerprint,
		IssuedAt:    wire.IssuedAt.UTC(),
		ExpiresAt:   wire.ExpiresAt.UTC(),
	}, nil
}

// Fingerprint derives the password-state fingerprint embedded in reset tokens.
//
// It is keyed with the signing secret so the token payload reveals nothing
// about the stored hash.
func (codec *TokenCodec) Fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, codec.secret)
	mac.Write([]byte(fingerprintLabel))
	mac.Write([]byte(passwordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:fingerprintLength])
}

// FingerprintMatches reports, in constant time, whether a claimed fingerprint
// belongs to the given password hash.
func (codec *TokenCodec) FingerprintMatches(claimed, passwordHash string) bool {
	expected := codec.Fingerprint(passwordHash)
	return subtle.ConstantTimeCompare([]byte(claimed), []byte(expected)) == 1
}

// # Activation Tokens

// SignActivation signs activation claims. Timestamps default like [TokenCodec.SignSession].
func (codec *TokenCodec) SignActivation(claims ActivationClaims) (string, error) {
	if claims.UserID == "" || claims.Email == "" {
		return "", errors.New("sec: activation claims need a subject and an email")
	}

	issuedAt, expiresAt, err := codec.window(claims.IssuedAt, claims.ExpiresAt, codec.ttls.Activation)
	if err != nil {
		return "", err
	}
	return codec.sign(activationWire{
		RegisteredClaims: codec.registered(claims.UserID, audienceActivation, issuedAt, expiresAt),
		Email:            claims.Email,
	})
}

// VerifyActivation returns the claims of a valid activation token.
func (codec *TokenCodec) VerifyActivation(token string) (*ActivationClaims, error) {
	wire := &activationWire{}
	if err := codec.parse(token, audienceActivation, wire); err != nil {
		return nil, err
	}

	if wire.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidToken)
	}

	return &ActivationClaims{
		UserID:    wire.Subject,
		Email:     wire.Email,
		IssuedAt:  wire.IssuedAt.UTC(),
		ExpiresAt: wire.ExpiresAt.UTC(),
	}, nil
}

// # Internals

// window fills in defaulted timestamps. Tokens carry whole seconds, so the
// clock is truncated and caller-supplied sub-second instants are refused;
// otherwise a token would verify to different claims than it was signed with.
func (codec *TokenCodec) window(issuedAt, expiresAt time.Time, ttl time.Duration) (time.Time, time.Time, error) {
	if issuedAt.IsZero() {
		issuedAt = codec.now().Truncate(time.Second)
	}
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(ttl)
	}
	if !issuedAt.Equal(issuedAt.Truncate(time.Second)) || !expiresAt.Equal(expiresAt.Truncate(time.Second)) {
		return time.Time{}, time.Time{}, errors.New("sec: token timestamps must be whole seconds")
	}
	return issuedAt, expiresAt, nil
}

func (codec *TokenCodec) registered(subject, audience string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    codec.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (codec *TokenCodec) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// parse verifies signature, issuer, audience and the [iat, exp) window.
func (codec *TokenCodec) parse(token, audience string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, codec.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(codec.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return fmt.Errorf("%w: missing issued-at", ErrInvalidToken)
	}
	return nil
}

func (codec *TokenCodec) key(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
	}
	return codec.secret, nil
}
