package cache

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"skillbridge/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_DisabledBypasses(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, log.New(io.Discard, "", 0))
	ctx := context.Background()

	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)
	require.NoError(t, r.SetJSON(ctx, "k", map[string]int{"a": 1}, 0))

	var out map[string]int
	hit, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.Close())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.SetJSON(context.Background(), "k", 1, time.Second))
	assert.NoError(t, r.Delete(context.Background(), "k"))
}

func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r := NewRedis(config.RedisConfig{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")}, log.New(io.Discard, "", 0))
	if !r.Available() {
		t.Skip("redis not reachable")
	}
	defer r.Close()

	ctx := context.Background()
	key := "test:" + uuid.NewString()
	defer r.Delete(ctx, key)

	type payload struct {
		Skills []string `json:"skills"`
	}
	require.NoError(t, r.SetJSON(ctx, key, payload{Skills: []string{"go", "sql"}}, time.Minute))

	var got payload
	hit, err := r.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []string{"go", "sql"}, got.Skills)
}
