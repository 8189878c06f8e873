// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/gazette/internal/platform/sec"
	"github.com/taibuivan/gazette/internal/platform/validate"
	"github.com/taibuivan/gazette/internal/users/auth"
)

// memDirectory is an in-memory [auth.UserDirectory].
type memDirectory struct {
	mu        sync.Mutex
	byID      map[string]*auth.User
	createErr error
	lookupErr error
	updates   int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byID: make(map[string]*auth.User)}
}

func (d *memDirectory) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	for _, user := range d.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (d *memDirectory) FindByID(_ context.Context, id string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user, ok := d.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, auth.ErrUserNotFound
}

func (d *memDirectory) Create(_ context.Context, user *auth.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return d.createErr
	}
	copied := *user
	d.byID[user.ID] = &copied
	return nil
}

func (d *memDirectory) UpdatePassword(_ context.Context, userID, currentHash, newHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.byID[userID]
	if !ok || user.PasswordHash != currentHash {
		return auth.ErrUserNotFound
	}
	user.PasswordHash = newHash
	d.updates++
	return nil
}

func (d *memDirectory) MarkActivated(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.byID[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.IsActivated = true
	return nil
}

func (d *memDirectory) updateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates
}

func (d *memDirectory) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byID)
}

// sentMail is one recorded notification.
type sentMail struct {
	kind  string
	user  auth.User
	token string
}

// recordingNotifier captures notifications, optionally failing.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *recordingNotifier) SendRegisterNotify(_ context.Context, user *auth.User, token string) error {
	return n.record(auth.NotifyRegister, user, token)
}

func (n *recordingNotifier) SendResetPasswordLinkNotify(_ context.Context, user *auth.User, token string) error {
	return n.record(auth.NotifyResetPasswordLink, user, token)
}

func (n *recordingNotifier) record(kind string, user *auth.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{kind: kind, user: *user, token: token})
	return nil
}

func (n *recordingNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

// captchaStub accepts the literal token "human".
type captchaStub struct{}

func (captchaStub) Verify(_ context.Context, token, _ string) bool {
	return token == "human"
}

// clock is a settable time source for the token codec.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errMailerDown = errors.New("mailer down")

// fixture wires a service over in-memory collaborators.
type fixture struct {
	service   *auth.Service
	directory *memDirectory
	notifier  *recordingNotifier
	codec     *sec.TokenCodec
	clock     *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec, err := sec.NewTokenCodec([]byte(strings.Repeat("s", 32)), "gazette.test", sec.TokenTTLs{
		Session:    time.Hour,
		Reset:      30 * time.Minute,
		Activation: 72 * time.Hour,
	}, sec.WithClock(clk.Now))
	require.NoError(t, err)

	fx := &fixture{
		directory: newMemDirectory(),
		notifier:  &recordingNotifier{},
		codec:     codec,
		clock:     clk,
	}

	fx.service, err = auth.NewService(auth.Deps{
		Directory: fx.directory,
		Hasher:    sec.NewBcryptHasher(bcrypt.MinCost),
		Tokens:    codec,
		Notifier:  fx.notifier,
		Captcha:   captchaStub{},
	})
	require.NoError(t, err)

	return fx
}

// serviceOver builds a second service sharing the fixture's collaborators but
// reading accounts through directory.
func (fx *fixture) serviceOver(t *testing.T, directory auth.UserDirectory) *auth.Service {
	t.Helper()
	service, err := auth.NewService(auth.Deps{
		Directory: directory,
		Hasher:    sec.NewBcryptHasher(bcrypt.MinCost),
		Tokens:    fx.codec,
		Notifier:  fx.notifier,
		Captcha:   captchaStub{},
	})
	require.NoError(t, err)
	return service
}

// lookupBarrier holds every FindByID until parties callers are inside it, so
// concurrent flows all read the same account state.
type lookupBarrier struct {
	*memDirectory

	mu      sync.Mutex
	parties int
	arrived int
	release chan struct{}
}

func newLookupBarrier(directory *memDirectory, parties int) *lookupBarrier {
	return &lookupBarrier{memDirectory: directory, parties: parties, release: make(chan struct{})}
}

func (b *lookupBarrier) FindByID(ctx context.Context, id string) (*auth.User, error) {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-time.After(2 * time.Second):
	}
	return b.memDirectory.FindByID(ctx, id)
}

func payload(fields map[string]string) validate.Input {
	return validate.Input{Fields: fields, RemoteIP: "203.0.113.9"}
}

func registration(email, password string) validate.Input {
	return payload(map[string]string{
		"email":                email,
		"password":             password,
		"passwordConfirmation": password,
		"recaptchaToken":       "human",
	})
}

// register creates an account through the public flow.
func (fx *fixture) register(t *testing.T, email, password string) *auth.User {
	t.Helper()
	user, err := fx.service.Register(context.Background(), registration(email, password))
	require.NoError(t, err)
	return user
}
