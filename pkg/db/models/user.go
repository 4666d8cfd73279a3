package models

import (
	"time"

	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
)

// User mirrors a Kinde identity plus local subscription state. The primary
// key is the identity provider's id, so it is text rather than a UUID.
type User struct {
	ID               string `gorm:"type:text;primaryKey"`
	Email            string `gorm:"type:text;not null;uniqueIndex"`
	IsAdmin          bool   `gorm:"column:is_admin;not null;default:false"`
	IsSuspended      bool   `gorm:"column:is_suspended;not null;default:false"`
	HasAcceptedTerms bool   `gorm:"column:has_accepted_terms;not null;default:false"`
	Image            *string

	StripeCustomerID       *string    `gorm:"column:stripe_customer_id;uniqueIndex"`
	StripeSubscriptionID   *string    `gorm:"column:stripe_subscription_id;uniqueIndex"`
	StripePriceID          *string    `gorm:"column:stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `gorm:"column:stripe_current_period_end"`

	EsewaPaymentID        *string    `gorm:"column:esewa_payment_id"`
	EsewaCurrentPeriodEnd *time.Time `gorm:"column:esewa_current_period_end"`

	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
