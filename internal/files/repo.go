package files

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
)

// Repository handles file and message persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, file *models.File) error
	ListByUser(ctx context.Context, userID string) ([]models.File, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.File, error)
	FindByKeyForUser(ctx context.Context, key, userID string) (*models.File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListMessages(ctx context.Context, fileID uuid.UUID, limit int, cursor *models.Message) ([]models.Message, error)
	FindMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a file repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.File, error) {
	var list []models.File
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.File, error) {
	return r.findOne(ctx, "id = ? AND user_id = ?", id, userID)
}

func (r *repository) FindByKeyForUser(ctx context.Context, key, userID string) (*models.File, error) {
	return r.findOne(ctx, "key = ? AND user_id = ?", key, userID)
}

func (r *repository) findOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).Where(query, args...).First(&file).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// Delete removes the file and its chat history.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("file_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.File{}).Error
}

// ListMessages pages through a file's chat history, newest first. The
// cursor message, when present, is included as the first row of the page.
func (r *repository) ListMessages(ctx context.Context, fileID uuid.UUID, limit int, cursor *models.Message) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("file_id = ?", fileID)
	if cursor != nil {
		q = q.Where(
			"(created_at < ?) OR (created_at = ? AND id <= ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var list []models.Message
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
