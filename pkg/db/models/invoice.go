package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
)

// Invoice is an immutable record of a single payment event. Rows are
// written once on settlement and never mutated afterwards; the composite
// unique index on (payment_id, payment_method) backs duplicate detection
// for client-reported wallet confirmations.
type Invoice struct {
	ID                      uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                  string              `gorm:"column:user_id;type:text;not null;index"`
	Amount                  int64               `gorm:"column:amount;not null"`
	Currency                enums.Currency      `gorm:"column:currency;not null;default:'USD'"`
	Status                  enums.InvoiceStatus `gorm:"column:status;not null;default:'PENDING'"`
	PaymentMethod           enums.PaymentMethod `gorm:"column:payment_method;not null;uniqueIndex:idx_invoices_payment_ref"`
	PaymentID               *string             `gorm:"column:payment_id;uniqueIndex:idx_invoices_payment_ref"`
	SubscriptionPeriodStart time.Time           `gorm:"column:subscription_period_start;not null"`
	SubscriptionPeriodEnd   time.Time           `gorm:"column:subscription_period_end;not null"`
	Description             *string             `gorm:"column:description"`
	PaidAt                  *time.Time          `gorm:"column:paid_at"`
	CreatedAt               time.Time           `gorm:"column:created_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID"`
}
