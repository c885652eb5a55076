package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultKey(t *testing.T) {
	assert.Equal(t, "import:result:abc", resultKey("abc"))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-redis-url")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestRedisStore_ServerUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	err := s.Save(ctx, sampleResult("a"))
	assert.ErrorContains(t, err, "save import result a")

	_, err = s.Get(ctx, "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResultNotFound)
}

// Runs against a real server when REDIS_URL is set.
func TestRedisStore_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	s := NewRedisStore(client, time.Minute)
	id := uuid.NewString()
	require.NoError(t, s.Save(ctx, sampleResult(id)))
	defer client.Del(ctx, resultKey(id))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SalesCreated)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "Cantidad", got.Errors[0].Field)

	ttl, err := client.TTL(ctx, resultKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = s.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrResultNotFound)
}
