package invoices

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	"github.com/Aryangurung1/HellooBuddy/pkg/pagination"
)

// ListQuery configures the admin invoice listing. The date window applies
// to created_at with an inclusive end.
type ListQuery struct {
	Status *enums.InvoiceStatus
	UserID *string
	Start  *time.Time
	End    *time.Time
	Limit  int
	Cursor *pagination.Cursor
}

// StatusCount is one row of the per-status aggregation.
type StatusCount struct {
	Status enums.InvoiceStatus
	Users  int64
}

// Repository handles invoice persistence. Invoices are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByPaymentRef(ctx context.Context, method enums.PaymentMethod, paymentID string) (*models.Invoice, error)
	ListLatestPerUser(ctx context.Context, query ListQuery) ([]models.Invoice, *pagination.Cursor, error)
	LatestPaidPerUser(ctx context.Context, start, end *time.Time) ([]models.Invoice, error)
	CountUsersByStatus(ctx context.Context, start, end *time.Time) ([]StatusCount, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByPaymentRef(ctx context.Context, method enums.PaymentMethod, paymentID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("payment_method = ? AND payment_id = ?", method, paymentID).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// ListLatestPerUser returns each user's most recent invoice matching the
// filters, newest first, with cursor pagination.
func (r *repository) ListLatestPerUser(ctx context.Context, query ListQuery) ([]models.Invoice, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)

	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	q = applyFilters(q, query.Status, query.UserID, query.Start, query.End, "created_at")
	q = q.Where(`created_at = (
		SELECT MAX(i2.created_at) FROM invoices i2 WHERE i2.user_id = invoices.user_id`+
		filterSubquery(query.Status, query.UserID, query.Start, query.End, "created_at")+`)`,
		subqueryArgs(query.Status, query.UserID, query.Start, query.End)...)

	if query.Cursor != nil {
		q = q.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID,
		)
	}

	var rows []models.Invoice
	err := q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "email")
		}).
		Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

// LatestPaidPerUser returns each user's most recent PAID invoice with the
// paid_at timestamp inside the optional window. The window constrains the
// per-user MAX as well, so a user whose newest payment falls outside the
// window is still counted via their latest in-window invoice.
func (r *repository) LatestPaidPerUser(ctx context.Context, start, end *time.Time) ([]models.Invoice, error) {
	status := enums.InvoiceStatusPaid
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	q = applyFilters(q, &status, nil, start, end, "paid_at")
	q = q.Where(`created_at = (
		SELECT MAX(i2.created_at) FROM invoices i2 WHERE i2.user_id = invoices.user_id`+
		filterSubquery(&status, nil, start, end, "paid_at")+`)`,
		subqueryArgs(&status, nil, start, end)...)

	var rows []models.Invoice
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountUsersByStatus counts distinct users per invoice status within the
// optional created_at window.
func (r *repository) CountUsersByStatus(ctx context.Context, start, end *time.Time) ([]StatusCount, error) {
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	q = applyFilters(q, nil, nil, start, end, "created_at")

	var rows []StatusCount
	err := q.Select("status, COUNT(DISTINCT user_id) AS users").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func applyFilters(q *gorm.DB, status *enums.InvoiceStatus, userID *string, start, end *time.Time, dateColumn string) *gorm.DB {
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if start != nil {
		q = q.Where(dateColumn+" >= ?", *start)
	}
	if end != nil {
		q = q.Where(dateColumn+" <= ?", *end)
	}
	return q
}

func filterSubquery(status *enums.InvoiceStatus, userID *string, start, end *time.Time, dateColumn string) string {
	clause := ""
	if status != nil {
		clause += " AND i2.status = ?"
	}
	if userID != nil {
		clause += " AND i2.user_id = ?"
	}
	if start != nil {
		clause += " AND i2." + dateColumn + " >= ?"
	}
	if end != nil {
		clause += " AND i2." + dateColumn + " <= ?"
	}
	return clause
}

func subqueryArgs(status *enums.InvoiceStatus, userID *string, start, end *time.Time) []any {
	var args []any
	if status != nil {
		args = append(args, *status)
	}
	if userID != nil {
		args = append(args, *userID)
	}
	if start != nil {
		args = append(args, *start)
	}
	if end != nil {
		args = append(args, *end)
	}
	return args
}
