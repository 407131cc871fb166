package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// GetJSON decodes the cached value at key into out and reports whether it was there.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, out any) (bool, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, out)
}

func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Limiter is a fixed-window counter: the first hit in a window starts its TTL.
type Limiter struct {
	RDB    redis.Cmdable
	Limit  int
	Window time.Duration
}

// Allow counts one attempt for id and reports whether it is within the limit, with the time
// left until the window resets.
func (l *Limiter) Allow(ctx context.Context, id string) (bool, time.Duration, error) {
	key := fmt.Sprintf(KeyLoginAttempts, id)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, l.Window)
		ttl = p.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return incr.Val() <= int64(l.Limit), ttl.Val(), nil
}

// recordSale marks the event processed and adds every line's quantity in one step, so a
// redelivered event neither double counts nor half counts.
var recordSale = redis.NewScript(`
if redis.call('SET', KEYS[1], '1', 'NX', 'EX', ARGV[1]) == false then
  return 0
end
for i = 2, #KEYS do
  redis.call('INCRBY', KEYS[i], ARGV[i])
end
return 1`)

// RecordSale applies sold (product id to quantity) once per eventID and reports whether this
// call applied it.
func RecordSale(ctx context.Context, rdb redis.Scripter, service, eventID string, sold map[string]int) (bool, error) {
	keys := []string{fmt.Sprintf(KeyDedup, service, eventID)}
	args := []any{int64(TTLDedup / time.Second)}
	for productID, qty := range sold {
		keys = append(keys, fmt.Sprintf(KeyProductSales, productID))
		args = append(args, qty)
	}
	n, err := recordSale.Run(ctx, rdb, keys, args...).Int()
	return n == 1, err
}

// Sales returns the units sold for a product; a product never sold has zero.
func Sales(ctx context.Context, rdb redis.Cmdable, productID string) (int64, error) {
	n, err := rdb.Get(ctx, fmt.Sprintf(KeyProductSales, productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
