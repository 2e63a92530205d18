package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisCache_FailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, closeFn, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})

	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Nil(t, closeFn)
	assert.Contains(t, err.Error(), "failed to ping redis")
}
