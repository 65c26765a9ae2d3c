// Package lock keeps two bot instances from racing the same target. The
// design assumes one local racer against out-of-process competitors; the
// lease makes that assumption hold when several machines share a config.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld means another instance currently holds the target.
var ErrHeld = errors.New("target already locked by another instance")

// Release only deletes the key when this instance still owns it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type Lock struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration

	key   string
	token string
}

type Option func(*Lock)

func WithPrefix(prefix string) Option {
	return func(l *Lock) { l.prefix = strings.Trim(prefix, ":") }
}

// WithTTL bounds how long a crashed instance keeps the target locked.
func WithTTL(d time.Duration) Option {
	return func(l *Lock) { l.ttl = d }
}

// New creates a lease for one target, keyed by provider and date.
func New(rdb *redis.Client, provider, date string, opts ...Option) *Lock {
	l := &Lock{
		rdb:    rdb,
		prefix: "slotsnipe:race",
		ttl:    30 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.key = fmt.Sprintf("%s:%s:%s", l.prefix, provider, date)
	return l
}

func (l *Lock) Acquire(ctx context.Context) error {
	l.token = uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", l.key, ErrHeld)
	}
	return nil
}

func (l *Lock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	if err := redis.NewScript(releaseScript).Run(ctx, l.rdb, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	l.token = ""
	return nil
}
