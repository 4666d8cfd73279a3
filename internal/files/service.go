package files

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

const (
	defaultMessageLimit = 10
	maxMessageLimit     = 100
)

// MessageSummary is one chat turn in a file's history.
type MessageSummary struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	IsUserMessage bool      `json:"is_user_message"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessagesResult is one page of chat history plus the next cursor.
type MessagesResult struct {
	Messages   []MessageSummary `json:"messages"`
	NextCursor *string          `json:"next_cursor"`
}

// PDFSummary is the admin view of an uploaded document.
type PDFSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceParams groups dependencies for the file service.
type ServiceParams struct {
	Repo   Repository
	Users  users.Repository
	Logger *logger.Logger
}

// Service serves uploaded files and their chat history. Every user-facing
// lookup is scoped to the owner; missing and foreign files are
// indistinguishable to the caller.
type Service struct {
	repo  Repository
	users users.Repository
	logg  *logger.Logger
}

// NewService builds a file service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{repo: params.Repo, users: params.Users, logg: params.Logger}, nil
}

// ListForUser returns the caller's uploaded files, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.File, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	return s.repo.ListByUser(ctx, userID)
}

// UploadStatus reports a file's processing state. A file the caller cannot
// see reads as still pending, so polling clients keep waiting instead of
// learning the id exists.
func (s *Service) UploadStatus(ctx context.Context, userID string, fileID uuid.UUID) (enums.UploadStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	file, err := s.repo.FindByIDForUser(ctx, fileID, userID)
	if err != nil {
		return "", err
	}
	if file == nil {
		return enums.UploadStatusPending, nil
	}
	return file.UploadStatus, nil
}

// GetByKey resolves a file by its storage key, scoped to the owner.
func (s *Service) GetByKey(ctx context.Context, userID, key string) (*models.File, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key is required")
	}
	file, err := s.repo.FindByKeyForUser(ctx, key, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	return file, nil
}

// Delete removes the caller's file and returns the deleted record.
func (s *Service) Delete(ctx context.Context, userID string, fileID uuid.UUID) (*models.File, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	file, err := s.repo.FindByIDForUser(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID), "file deleted")
	return file, nil
}

// Messages pages through a file's chat history, newest first. The cursor
// is the id of the first message of the next page.
func (s *Service) Messages(ctx context.Context, userID string, fileID uuid.UUID, limit int, cursor string) (MessagesResult, error) {
	if strings.TrimSpace(userID) == "" {
		return MessagesResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	file, err := s.repo.FindByIDForUser(ctx, fileID, userID)
	if err != nil {
		return MessagesResult{}, err
	}
	if file == nil {
		return MessagesResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}

	var cursorMessage *models.Message
	if cursor != "" {
		cursorID, err := uuid.Parse(cursor)
		if err != nil {
			return MessagesResult{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursorMessage, err = s.repo.FindMessage(ctx, cursorID)
		if err != nil {
			return MessagesResult{}, err
		}
		if cursorMessage == nil || cursorMessage.FileID != fileID {
			return MessagesResult{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
	}

	rows, err := s.repo.ListMessages(ctx, fileID, limit+1, cursorMessage)
	if err != nil {
		return MessagesResult{}, err
	}

	result := MessagesResult{}
	if len(rows) > limit {
		next := rows[limit].ID.String()
		result.NextCursor = &next
		rows = rows[:limit]
	}
	result.Messages = make([]MessageSummary, 0, len(rows))
	for _, row := range rows {
		result.Messages = append(result.Messages, MessageSummary{
			ID:            row.ID,
			Text:          row.Text,
			IsUserMessage: row.IsUserMessage,
			CreatedAt:     row.CreatedAt,
		})
	}
	return result, nil
}

// AdminListPDFs lists any user's uploads for moderation.
func (s *Service) AdminListPDFs(ctx context.Context, requesterID, userID string) ([]PDFSummary, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]PDFSummary, 0, len(rows))
	for _, row := range rows {
		list = append(list, PDFSummary{
			ID:        row.ID,
			Name:      row.Name,
			URL:       row.URL,
			CreatedAt: row.CreatedAt,
		})
	}
	return list, nil
}

// AdminDeletePDF removes any user's file for moderation.
func (s *Service) AdminDeletePDF(ctx context.Context, requesterID string, fileID uuid.UUID) (*models.File, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}

	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, file.UserID), "file deleted by admin")
	return file, nil
}

func (s *Service) requireAdmin(ctx context.Context, requesterID string) error {
	if strings.TrimSpace(requesterID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	user, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized")
	}
	return nil
}
