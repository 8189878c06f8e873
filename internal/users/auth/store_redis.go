// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gazette/internal/platform/constants"
)

// Notification kinds understood by the mailer.
const (
	NotifyRegister          = "register"
	NotifyResetPasswordLink = "reset_password_link"
)

// Notification is one job on the outbox list.
type Notification struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// RedisNotifier implements [Notifier] by pushing JSON jobs onto a Redis list
// that the mailer consumes.
type RedisNotifier struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

// NewRedisNotifier creates a notifier writing to the default outbox key.
func NewRedisNotifier(client redis.Cmdable) *RedisNotifier {
	return &RedisNotifier{
		client: client,
		key:    constants.RedisKeyNotifyOutbox,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SendRegisterNotify queues the welcome mail carrying the activation token.
func (notifier *RedisNotifier) SendRegisterNotify(ctx context.Context, user *User, activationToken string) error {
	return notifier.push(ctx, NotifyRegister, user, activationToken)
}

// SendResetPasswordLinkNotify queues the mail carrying the reset code.
func (notifier *RedisNotifier) SendResetPasswordLinkNotify(ctx context.Context, user *User, resetToken string) error {
	return notifier.push(ctx, NotifyResetPasswordLink, user, resetToken)
}

func (notifier *RedisNotifier) push(ctx context.Context, kind string, user *User, token string) error {
	payload, err := json.Marshal(Notification{
		Kind:      kind,
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		CreatedAt: notifier.now(),
	})
	if err != nil {
		return fmt.Errorf("redis_notify_encode_failed: %w", err)
	}

	if err := notifier.client.RPush(ctx, notifier.key, payload).Err(); err != nil {
		return fmt.Errorf("redis_notify_push_failed: %w", err)
	}

	return nil
}
