package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
)

// StatsParams bounds the revenue aggregation. End dates are treated as
// inclusive through the end of the day.
type StatsParams struct {
	Start *time.Time
	End   *time.Time
}

// MethodStat is the per-provider slice of the revenue breakdown. Amounts
// are reported in USD.
type MethodStat struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// StatsResult is the admin revenue dashboard payload.
type StatsResult struct {
	TotalRevenue        float64               `json:"total_revenue"`
	StatusCounts        map[string]int64      `json:"status_counts"`
	PaymentMethodCounts map[string]MethodStat `json:"payment_method_counts"`
}

// ListParams configures the admin invoice listing.
type ListParams struct {
	Limit  int
	Cursor string
	Status *enums.InvoiceStatus
	UserID *string
	Start  *time.Time
	End    *time.Time
}

// InvoiceUser is the owner subset embedded in listing rows.
type InvoiceUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// InvoiceWithUser is one listing row.
type InvoiceWithUser struct {
	ID                      uuid.UUID           `json:"id"`
	UserID                  string              `json:"user_id"`
	Amount                  int64               `json:"amount"`
	Currency                enums.Currency      `json:"currency"`
	Status                  enums.InvoiceStatus `json:"status"`
	PaymentMethod           enums.PaymentMethod `json:"payment_method"`
	PaymentID               *string             `json:"payment_id"`
	SubscriptionPeriodStart time.Time           `json:"subscription_period_start"`
	SubscriptionPeriodEnd   time.Time           `json:"subscription_period_end"`
	Description             *string             `json:"description"`
	PaidAt                  *time.Time          `json:"paid_at"`
	CreatedAt               time.Time           `json:"created_at"`
	User                    InvoiceUser         `json:"user"`
}

// ListResult is one page of invoices plus the next cursor.
type ListResult struct {
	Invoices   []InvoiceWithUser `json:"invoices"`
	NextCursor *string           `json:"next_cursor"`
}

// CreateInput is the manual invoice creation payload.
type CreateInput struct {
	UserID                  string
	Amount                  int64
	Currency                enums.Currency
	Status                  enums.InvoiceStatus
	PaymentMethod           enums.PaymentMethod
	PaymentID               *string
	SubscriptionPeriodStart time.Time
	SubscriptionPeriodEnd   time.Time
	Description             *string
	PaidAt                  *time.Time
}
