package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	// Zero ttl never expires.
	c.Set(ctx, "forever", []byte("v"), 0)
	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemory_CopiesValue(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	val := []byte("original")
	c.Set(ctx, "k", val, 0)
	val[0] = 'X'

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), got)
}

func TestRedis_SetGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedis(client)
	ctx := context.Background()

	mock.ExpectSet("k", []byte("v"), time.Minute).SetVal("OK")
	c.Set(ctx, "k", []byte("v"), time.Minute)

	mock.ExpectGet("k").SetVal("v")
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_MissIsNotFatal(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedis(client)

	mock.ExpectGet("absent").RedisNil()
	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestNewAuto(t *testing.T) {
	assert.IsType(t, &memory{}, NewAuto("", 0))
	assert.IsType(t, &redisCache{}, NewAuto("localhost:6379", 0))
}
