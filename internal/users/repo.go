package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
)

// Counts aggregates the public user totals. Admin accounts are excluded
// from every bucket.
type Counts struct {
	Total     int64
	Active    int64
	Suspended int64
}

// Repository handles user persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListNonAdmins(ctx context.Context) ([]models.User, error)
	PurgeUserData(ctx context.Context, id string) error
	Counts(ctx context.Context) (Counts, error)
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
	SetSuspended(ctx context.Context, id string, suspended bool) error
	SetTermsAccepted(ctx context.Context, id string, accepted bool) error
	ResetTermsAcceptance(ctx context.Context) error
	SetImage(ctx context.Context, id string, dataURL string) error
	SetRewardPeriod(ctx context.Context, id string, periodEnd *time.Time, method *enums.PaymentMethod) error
	SetWalletSubscription(ctx context.Context, id string, paymentID string, periodEnd time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListNonAdmins(ctx context.Context) ([]models.User, error) {
	var list []models.User
	if err := r.db.WithContext(ctx).
		Where("is_admin = ?", false).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// PurgeUserData removes the user's dependent rows before the user itself.
// Callers run this inside a transaction.
func (r *repository) PurgeUserData(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.File{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.User{}).Error
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).Where("is_admin = ?", false)
	}

	if err := base().Count(&counts.Total).Error; err != nil {
		return Counts{}, err
	}
	if err := base().Where("is_suspended = ?", false).Count(&counts.Active).Error; err != nil {
		return Counts{}, err
	}
	if err := base().Where("is_suspended = ?", true).Count(&counts.Suspended).Error; err != nil {
		return Counts{}, err
	}
	return counts, nil
}

func (r *repository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_admin = ?", false).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *repository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	return r.updateColumns(ctx, id, map[string]any{"is_suspended": suspended})
}

func (r *repository) SetTermsAccepted(ctx context.Context, id string, accepted bool) error {
	return r.updateColumns(ctx, id, map[string]any{"has_accepted_terms": accepted})
}

func (r *repository) ResetTermsAcceptance(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("has_accepted_terms = ?", true).
		Update("has_accepted_terms", false).Error
}

func (r *repository) SetImage(ctx context.Context, id string, dataURL string) error {
	return r.updateColumns(ctx, id, map[string]any{"image": dataURL})
}

func (r *repository) SetRewardPeriod(ctx context.Context, id string, periodEnd *time.Time, method *enums.PaymentMethod) error {
	updates := map[string]any{"esewa_current_period_end": periodEnd}
	if method != nil {
		updates["payment_method"] = *method
	}
	return r.updateColumns(ctx, id, updates)
}

func (r *repository) SetWalletSubscription(ctx context.Context, id string, paymentID string, periodEnd time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"esewa_payment_id":         paymentID,
		"esewa_current_period_end": periodEnd,
		"payment_method":           enums.PaymentMethodEsewa,
	})
}

func (r *repository) updateColumns(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
