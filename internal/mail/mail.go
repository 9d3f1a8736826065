// Package mail hands verification messages to whatever delivers email.
package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// DefaultOutboxKey is the Redis list the delivery worker pops from.
const DefaultOutboxKey = "mail:outbox"

// RedisOutbox queues messages as JSON on a Redis list.
type RedisOutbox struct {
	rdb *redis.Client
	key string
}

// NewRedisOutbox creates a new RedisOutbox
func NewRedisOutbox(rdb *redis.Client, key string) *RedisOutbox {
	if key == "" {
		key = DefaultOutboxKey
	}
	return &RedisOutbox{rdb: rdb, key: key}
}

// Send pushes msg onto the outbox list.
func (o *RedisOutbox) Send(ctx context.Context, msg models.VerificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := o.rdb.LPush(ctx, o.key, payload).Err(); err != nil {
		return fmt.Errorf("queue message: %w", err)
	}
	return nil
}

// LogMailer writes messages to the log. Only for local development.
type LogMailer struct {
	log logrus.FieldLogger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(log logrus.FieldLogger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs msg.
func (m *LogMailer) Send(_ context.Context, msg models.VerificationMessage) error {
	m.log.WithFields(logrus.Fields{
		"purpose": msg.Purpose,
		"email":   msg.Email,
		"code":    msg.Code,
		"link":    msg.Link,
	}).Info("verification message")
	return nil
}
