package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// MaxCodeAttempts is how many wrong guesses a code survives.
const MaxCodeAttempts = 5

// CodeRepository keeps one-time verification codes keyed by purpose and email.
type CodeRepository interface {
	// SaveCode stores code for ttl, replacing any earlier code for the same
	// purpose and email.
	SaveCode(ctx context.Context, purpose, email, code string, ttl time.Duration) error
	// ConsumeCode reports whether code matches the stored one and deletes it
	// on a match. A code is dropped after MaxCodeAttempts wrong guesses.
	ConsumeCode(ctx context.Context, purpose, email, code string) (bool, error)
}

// consumeScript compares and deletes in one round trip so a code can never be
// used twice.
var consumeScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
	return 0
end
if stored == ARGV[1] then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
local attempts = redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], redis.call("PTTL", KEYS[1]))
if attempts >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

// RedisCodeRepository implements CodeRepository on Redis string keys
type RedisCodeRepository struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCodeRepository creates a new RedisCodeRepository
func NewRedisCodeRepository(rdb *redis.Client) *RedisCodeRepository {
	return &RedisCodeRepository{rdb: rdb, prefix: "code:"}
}

func (r *RedisCodeRepository) keys(purpose, email string) (string, string) {
	key := r.prefix + purpose + ":" + email
	return key, key + ":attempts"
}

// SaveCode stores code and resets its attempt counter
func (r *RedisCodeRepository) SaveCode(ctx context.Context, purpose, email, code string, ttl time.Duration) error {
	key, attempts := r.keys(purpose, email)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code, ttl)
		pipe.Del(ctx, attempts)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

// ConsumeCode checks code against the stored one
func (r *RedisCodeRepository) ConsumeCode(ctx context.Context, purpose, email, code string) (bool, error) {
	key, attempts := r.keys(purpose, email)
	n, err := consumeScript.Run(ctx, r.rdb, []string{key, attempts}, code, MaxCodeAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return n == 1, nil
}
