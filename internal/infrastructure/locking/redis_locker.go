package locking

import (
	"context"
	"errors"
	"log"
	"time"

	"mis_invoicing/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisLockPrefix   = "invoice-lock:"
	defaultLockTTL    = 10 * time.Second
	defaultRetryDelay = 50 * time.Millisecond
)

var ErrLockLost = errors.New("lock expired before release")

// releaseScript deletes the key only while it still carries our token, so an
// expired lock taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock per invoice, shared by every instance
// pointing at the same Redis. The TTL bounds how long a crashed holder can
// block an invoice.
type RedisLocker struct {
	rdb        redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
}

var _ interfaces.IInvoiceLocker = (*RedisLocker)(nil)

func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, retryDelay: defaultRetryDelay}
}

func (l *RedisLocker) Lock(ctx context.Context, invoiceID string) (func(), error) {
	key := redisLockPrefix + invoiceID
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	return func() {
		// Release must run even when the request context is already done.
		res, err := releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Int()
		if err != nil {
			log.Printf("[invoice][lock] release failed invoice_id=%s err=%v", invoiceID, err)
			return
		}
		if res == 0 {
			log.Printf("[invoice][lock] %v invoice_id=%s ttl=%s", ErrLockLost, invoiceID, l.ttl)
		}
	}, nil
}
