package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highroller/payroll-api/internal/models"
)

type redisStub struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newRedisStub() *redisStub {
	return &redisStub{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (r *redisStub) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if r.err != nil {
		return redis.NewStatusResult("", r.err)
	}
	r.values[key] = fmt.Sprintf("%s", value)
	r.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (r *redisStub) Get(ctx context.Context, key string) *redis.StringCmd {
	if r.err != nil {
		return redis.NewStringResult("", r.err)
	}
	value, ok := r.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (r *redisStub) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := r.values[key]; ok {
			delete(r.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	client := newRedisStub()
	repo := NewSessionRepository(client)
	now := time.Now().UTC().Truncate(time.Second)
	session := &models.Session{
		ID:        "abc",
		UserID:    7,
		Username:  "admin",
		Role:      models.RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	require.NoError(t, repo.Save(context.Background(), session))
	assert.Contains(t, client.values, "session:abc")
	assert.InDelta(t, time.Hour.Seconds(), client.ttls["session:abc"].Seconds(), 5)

	loaded, err := repo.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, loaded.UserID)
	assert.Equal(t, session.Role, loaded.Role)
	assert.True(t, session.ExpiresAt.Equal(loaded.ExpiresAt))

	require.NoError(t, repo.Delete(context.Background(), "abc"))
	_, err = repo.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepositoryRejectsExpiredSession(t *testing.T) {
	repo := NewSessionRepository(newRedisStub())
	err := repo.Save(context.Background(), &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	require.Error(t, err)
}

func TestSessionRepositoryWrapsRedisErrors(t *testing.T) {
	client := newRedisStub()
	client.err = errors.New("connection refused")
	repo := NewSessionRepository(client)

	_, err := repo.Get(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}
