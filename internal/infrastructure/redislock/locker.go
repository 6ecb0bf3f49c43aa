package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-movimientos/internal/application/inventory"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

var _ inventory.Locker = (*Locker)(nil)

// releaseScript borra la clave solo si sigue siendo del dueño que la tomó.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker bloqueo distribuido con SET NX PX sobre Redis.
type Locker struct {
	client redis.UniversalClient
}

// New construye el locker.
func New(client redis.UniversalClient) *Locker {
	return &Locker{client: client}
}

// Acquire toma la clave por ttl. Devuelve domain.ErrLockNotAcquired si ya está tomada.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockNotAcquired
	}
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis release %s: %w", key, err)
		}
		return nil
	}, nil
}
