package terms

import (
	"context"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
)

// Repository handles terms-and-conditions persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, terms *models.TermsAndConditions) error
	FindActive(ctx context.Context) (*models.TermsAndConditions, error)
	DeactivateAll(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a terms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, terms *models.TermsAndConditions) error {
	return r.db.WithContext(ctx).Create(terms).Error
}

func (r *repository) FindActive(ctx context.Context) (*models.TermsAndConditions, error) {
	var terms models.TermsAndConditions
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&terms).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &terms, nil
}

func (r *repository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.TermsAndConditions{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
