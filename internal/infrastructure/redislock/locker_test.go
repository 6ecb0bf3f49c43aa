package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-movimientos/internal/domain"
	"github.com/jhoicas/inventario-movimientos/internal/infrastructure/redislock"
)

func newLocker(t *testing.T) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redislock.New(client), mr
}

func TestAcquire_SegundoIntentoFalla(t *testing.T) {
	l, _ := newLocker(t)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "conciliacion", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "conciliacion", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)

	require.NoError(t, release(ctx))
	release2, err := l.Acquire(ctx, "conciliacion", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestAcquire_ExpiraConTTL(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	_, err := l.Acquire(ctx, "conciliacion", time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = l.Acquire(ctx, "conciliacion", time.Second)
	assert.NoError(t, err)
}

// Un dueño con el bloqueo vencido no puede liberar el bloqueo de otro proceso.
func TestRelease_NoBorraBloqueoAjeno(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	staleRelease, err := l.Acquire(ctx, "conciliacion", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	_, err = l.Acquire(ctx, "conciliacion", time.Minute)
	require.NoError(t, err)

	require.NoError(t, staleRelease(ctx))

	assert.True(t, mr.Exists("conciliacion"))
	_, err = l.Acquire(ctx, "conciliacion", time.Minute)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
}
