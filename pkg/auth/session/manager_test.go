package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(accessID string) string { return "hb:session:" + accessID }

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}
}

func TestManagerCreateAndHasSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	mgr := newTestManager(store)

	require.NoError(t, mgr.Create(ctx, "jti-1", "kp_123"))

	ok, err := mgr.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManagerHasSessionMiss(t *testing.T) {
	mgr := newTestManager(newFakeStore())

	ok, err := mgr.HasSession(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerRevoke(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	mgr := newTestManager(store)

	require.NoError(t, mgr.Create(ctx, "jti-1", "kp_123"))
	require.NoError(t, mgr.Revoke(ctx, "jti-1"))

	ok, err := mgr.HasSession(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerCreateValidation(t *testing.T) {
	mgr := newTestManager(newFakeStore())

	assert.Error(t, mgr.Create(context.Background(), "", "kp_123"))
	assert.Error(t, mgr.Create(context.Background(), "jti-1", ""))
}
