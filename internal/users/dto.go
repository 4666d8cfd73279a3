package users

import "time"

// UserSummary is the admin-facing row for user listings. The display name
// comes from the identity provider, everything else from the local record.
type UserSummary struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	Name                   string     `json:"name"`
	IsSuspended            bool       `json:"is_suspended"`
	StripeCustomerID       *string    `json:"stripe_customer_id"`
	StripeSubscriptionID   *string    `json:"stripe_subscription_id"`
	StripePriceID          *string    `json:"stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `json:"stripe_current_period_end"`
	EsewaCurrentPeriodEnd  *time.Time `json:"esewa_current_period_end"`
	CreatedAt              time.Time  `json:"created_at"`
}

// PaginatedUsers is one page of user summaries plus the filtered total.
type PaginatedUsers struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// CountsResult is the public dashboard aggregate.
type CountsResult struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers    int64 `json:"active_users"`
	SuspendedUsers int64 `json:"suspended_users"`
}

// GrowthPoint is one month bucket of non-admin signups.
type GrowthPoint struct {
	Month string `json:"month"`
	Users int64  `json:"users"`
}

// KindeProfile is the identity-provider view of an account.
type KindeProfile struct {
	GivenName  string  `json:"given_name"`
	FamilyName string  `json:"family_name"`
	Email      string  `json:"email"`
	Picture    *string `json:"picture"`
}

// GrantRewardInput carries the admin reward grant request.
type GrantRewardInput struct {
	UserID      string
	Title       string
	Description string
	EndDate     time.Time
}
