package uploads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	redisclient "github.com/Aryangurung1/HellooBuddy/pkg/redis"
)

// ChunkInput is one slice of a base64-encoded avatar upload.
type ChunkInput struct {
	SessionID   string
	ChunkIndex  int
	TotalChunks int
	IsLastChunk bool
	FileType    string
	Data        string
}

// Result reports whether the upload completed on this chunk.
type Result struct {
	Completed bool `json:"completed"`
}

type imageUpdater interface {
	UpdateImage(ctx context.Context, userID, dataURL string) error
}

// ServiceParams groups dependencies for the chunked upload service.
type ServiceParams struct {
	Redis  *redisclient.Client
	Users  imageUpdater
	Config config.UploadsConfig
	Logger *logger.Logger
}

// Service assembles chunked avatar uploads. Chunks are parked in a redis
// hash keyed by (user, session) with a TTL so abandoned uploads clean
// themselves up; the final chunk triggers assembly into a data URL stored
// on the user record.
type Service struct {
	redis *redisclient.Client
	users imageUpdater
	cfg   config.UploadsConfig
	logg  *logger.Logger
}

// NewService builds a chunked upload service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.Users == nil {
		return nil, errors.New("users service is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	cfg := params.Config
	if cfg.MaxChunks <= 0 || cfg.MaxChunkBytes <= 0 || cfg.ChunkTTL <= 0 {
		return nil, errors.New("upload limits are required")
	}
	return &Service{
		redis: params.Redis,
		users: params.Users,
		cfg:   cfg,
		logg:  params.Logger,
	}, nil
}

// StoreChunk parks one chunk and, on the final one, assembles the image
// and writes it to the user's profile.
func (s *Service) StoreChunk(ctx context.Context, userID string, input ChunkInput) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	if err := s.validate(input); err != nil {
		return Result{}, err
	}

	key := s.redis.UploadKey(userID, input.SessionID)
	if err := s.redis.HSet(ctx, key, strconv.Itoa(input.ChunkIndex), input.Data); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing upload chunk")
	}
	if err := s.redis.Expire(ctx, key, s.cfg.ChunkTTL); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refreshing upload ttl")
	}

	if !input.IsLastChunk {
		return Result{}, nil
	}

	chunks, err := s.redis.HGetAll(ctx, key)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading upload chunks")
	}
	if len(chunks) != input.TotalChunks {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload incomplete: have %d of %d chunks", len(chunks), input.TotalChunks))
	}

	var assembled strings.Builder
	for i := 0; i < input.TotalChunks; i++ {
		part, ok := chunks[strconv.Itoa(i)]
		if !ok {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("upload incomplete: missing chunk %d", i))
		}
		assembled.WriteString(part)
	}

	dataURL := "data:" + input.FileType + ";base64," + assembled.String()
	if err := s.users.UpdateImage(ctx, userID, dataURL); err != nil {
		return Result{}, err
	}

	if err := s.redis.Del(ctx, key); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, userID), "failed to clear upload chunks")
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID), "profile image assembled")
	return Result{Completed: true}, nil
}

func (s *Service) validate(input ChunkInput) error {
	if strings.TrimSpace(input.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.TotalChunks <= 0 || input.TotalChunks > s.cfg.MaxChunks {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("total chunks must be between 1 and %d", s.cfg.MaxChunks))
	}
	if input.ChunkIndex < 0 || input.ChunkIndex >= input.TotalChunks {
		return pkgerrors.New(pkgerrors.CodeValidation, "chunk index out of range")
	}
	if input.Data == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "chunk data is required")
	}
	if len(input.Data) > s.cfg.MaxChunkBytes {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("chunk exceeds %d bytes", s.cfg.MaxChunkBytes))
	}
	if strings.TrimSpace(input.FileType) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file type is required")
	}
	if input.IsLastChunk && input.ChunkIndex != input.TotalChunks-1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "last chunk index mismatch")
	}
	return nil
}
