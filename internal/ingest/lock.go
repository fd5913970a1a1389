package ingest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultLockKey = "property-api:import-lock"

// ErrLocked: another importer holds the lock
var ErrLocked = errors.New("import already running")

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock: Redis SET NX lock guarding one import run; a nil client makes every call a no-op
type Lock struct {
	rc    *redis.Client
	key   string
	token string
}

// AcquireLock: take key for ttl or return ErrLocked
func AcquireLock(ctx context.Context, rc *redis.Client, key string, ttl time.Duration) (*Lock, error) {
	if rc == nil {
		return &Lock{}, nil
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("lock token: %w", err)
	}
	token := hex.EncodeToString(buf)
	ok, err := rc.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{rc: rc, key: key, token: token}, nil
}

// Release: delete the key only while it still holds this lock's token
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.rc == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rc, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
