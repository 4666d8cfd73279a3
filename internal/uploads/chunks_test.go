package uploads

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	redisclient "github.com/Aryangurung1/HellooBuddy/pkg/redis"
)

type fakeRedis struct {
	hashes  map[string]map[string]string
	expired map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes:  map[string]map[string]string{},
		expired: map[string]time.Duration{},
	}
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.hashes, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	hash, ok := f.hashes[key]
	if !ok {
		hash = map[string]string{}
		f.hashes[key] = hash
	}
	for i := 0; i+1 < len(values); i += 2 {
		hash[values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	return redis.NewMapStringStringResult(f.hashes[key], nil)
}

func (f *fakeRedis) HLen(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(f.hashes[key])), nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expired[key] = ttl
	return redis.NewBoolResult(true, nil)
}

type fakeImageUpdater struct {
	userID  string
	dataURL string
}

func (f *fakeImageUpdater) UpdateImage(ctx context.Context, userID, dataURL string) error {
	f.userID = userID
	f.dataURL = dataURL
	return nil
}

func testUploadService(t *testing.T, store *fakeRedis, updater *fakeImageUpdater) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Redis: redisclient.NewFromCmdable(store),
		Users: updater,
		Config: config.UploadsConfig{
			ChunkTTL:      10 * time.Minute,
			MaxChunks:     8,
			MaxChunkBytes: 1024,
		},
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestStoreChunkAssemblesOnLastChunk(t *testing.T) {
	store := newFakeRedis()
	updater := &fakeImageUpdater{}
	svc := testUploadService(t, store, updater)
	ctx := context.Background()

	parts := []string{"aaaa", "bbbb", "cccc"}
	for i, part := range parts {
		result, err := svc.StoreChunk(ctx, "kp_1", ChunkInput{
			SessionID:   "sess-1",
			ChunkIndex:  i,
			TotalChunks: len(parts),
			IsLastChunk: i == len(parts)-1,
			FileType:    "image/png",
			Data:        part,
		})
		if err != nil {
			t.Fatalf("chunk %d: %v", i, err)
		}
		if want := i == len(parts)-1; result.Completed != want {
			t.Fatalf("chunk %d: completed = %v, want %v", i, result.Completed, want)
		}
	}

	if updater.userID != "kp_1" {
		t.Fatalf("expected image update for kp_1, got %q", updater.userID)
	}
	if updater.dataURL != "data:image/png;base64,aaaabbbbcccc" {
		t.Fatalf("unexpected data url %q", updater.dataURL)
	}
	if len(store.hashes) != 0 {
		t.Fatalf("expected chunk hash cleared, got %v", store.hashes)
	}
}

func TestStoreChunkRefreshesTTL(t *testing.T) {
	store := newFakeRedis()
	svc := testUploadService(t, store, &fakeImageUpdater{})

	_, err := svc.StoreChunk(context.Background(), "kp_1", ChunkInput{
		SessionID:   "sess-1",
		ChunkIndex:  0,
		TotalChunks: 2,
		FileType:    "image/png",
		Data:        "aaaa",
	})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(store.expired) != 1 {
		t.Fatalf("expected ttl set on chunk hash, got %v", store.expired)
	}
	for _, ttl := range store.expired {
		if ttl != 10*time.Minute {
			t.Fatalf("expected configured ttl, got %v", ttl)
		}
	}
}

func TestStoreChunkRejectsMissingChunks(t *testing.T) {
	store := newFakeRedis()
	updater := &fakeImageUpdater{}
	svc := testUploadService(t, store, updater)
	ctx := context.Background()

	// Only the final chunk of three arrives.
	_, err := svc.StoreChunk(ctx, "kp_1", ChunkInput{
		SessionID:   "sess-1",
		ChunkIndex:  2,
		TotalChunks: 3,
		IsLastChunk: true,
		FileType:    "image/png",
		Data:        "cccc",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for incomplete upload, got %v", err)
	}
	if updater.dataURL != "" {
		t.Fatal("image must not be written for incomplete uploads")
	}
}

func TestStoreChunkValidatesInput(t *testing.T) {
	svc := testUploadService(t, newFakeRedis(), &fakeImageUpdater{})
	ctx := context.Background()

	base := ChunkInput{
		SessionID:   "sess-1",
		ChunkIndex:  0,
		TotalChunks: 2,
		FileType:    "image/png",
		Data:        "aaaa",
	}

	if _, err := svc.StoreChunk(ctx, "", base); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	bad := base
	bad.TotalChunks = 100
	if _, err := svc.StoreChunk(ctx, "kp_1", bad); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for chunk count, got %v", err)
	}

	bad = base
	bad.ChunkIndex = 5
	if _, err := svc.StoreChunk(ctx, "kp_1", bad); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for index, got %v", err)
	}

	bad = base
	bad.IsLastChunk = true
	if _, err := svc.StoreChunk(ctx, "kp_1", bad); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for last-chunk mismatch, got %v", err)
	}
}
