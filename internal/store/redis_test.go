package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	vals   map[string]string
	setErr error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.vals[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.vals[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedis_PrefixedRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{vals: map[string]string{}}
	r := NewRedis(fake, "bonus-ball")

	_, ok, err := r.GetJSON(ctx, "gameData.json")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.PutJSON(ctx, "gameData.json", json.RawMessage(`{"numbers":{}}`)))
	assert.Contains(t, fake.vals, "bonus-ball:gameData.json")

	got, ok, err := r.GetJSON(ctx, "gameData.json")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"numbers":{}}`, string(got))
}

func TestRedis_SetFailure(t *testing.T) {
	fake := &fakeRedis{vals: map[string]string{}, setErr: errors.New("READONLY")}
	err := NewRedis(fake, "").PutJSON(context.Background(), "k", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set k")
}
