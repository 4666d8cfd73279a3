package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	pkgstripe "github.com/Aryangurung1/HellooBuddy/pkg/stripe"
)

// periodGrace keeps a subscription usable for a day past its period end so
// renewals that land late do not interrupt access.
const periodGrace = 24 * time.Hour

const (
	planFree = "Free"
	planPro  = "Pro"
)

// Plan is a user's resolved subscription state across both providers.
type Plan struct {
	Name                   string               `json:"name"`
	IsSubscribed           bool                 `json:"is_subscribed"`
	IsCanceled             bool                 `json:"is_canceled"`
	PaymentMethod          *enums.PaymentMethod `json:"payment_method"`
	StripeSubscriptionID   *string              `json:"stripe_subscription_id"`
	StripeCurrentPeriodEnd *time.Time           `json:"stripe_current_period_end"`
	EsewaCurrentPeriodEnd  *time.Time           `json:"esewa_current_period_end"`
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Users   users.Repository
	Stripe  *pkgstripe.Client
	Billing StripeBillingClient
	Logger  *logger.Logger
	Now     func() time.Time
}

// Service resolves subscription plans and drives Stripe checkout.
type Service struct {
	users   users.Repository
	stripe  *pkgstripe.Client
	billing StripeBillingClient
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds a subscription service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Stripe == nil {
		return nil, errors.New("stripe client is required")
	}
	if params.Billing == nil {
		return nil, errors.New("billing client is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:   params.Users,
		stripe:  params.Stripe,
		billing: params.Billing,
		logg:    params.Logger,
		now:     now,
	}, nil
}

// Resolve reports the user's current plan. A user is subscribed when either
// provider's period end, plus the grace window, is still in the future.
func (s *Service) Resolve(ctx context.Context, userID string) (Plan, error) {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return Plan{}, err
	}
	return s.planFor(ctx, user), nil
}

// Checkout returns a Stripe URL for the user: the billing portal when they
// already hold an active Stripe subscription, a new checkout session
// otherwise.
func (s *Service) Checkout(ctx context.Context, userID string) (string, error) {
	user, err := s.mustFindUser(ctx, userID)
	if err != nil {
		return "", err
	}

	plan := s.planFor(ctx, user)
	billingURL := s.stripe.BillingURL()

	if plan.IsSubscribed && user.StripeCustomerID != nil {
		session, err := s.billing.NewPortalSession(ctx, &stripe.BillingPortalSessionParams{
			Customer:  user.StripeCustomerID,
			ReturnURL: stripe.String(billingURL),
		})
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating billing portal session")
		}
		return session.URL, nil
	}

	session, err := s.billing.NewCheckoutSession(ctx, &stripe.CheckoutSessionParams{
		SuccessURL:               stripe.String(billingURL),
		CancelURL:                stripe.String(billingURL),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.stripe.ProPriceID()),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"userId": user.ID},
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating checkout session")
	}
	return session.URL, nil
}

func (s *Service) planFor(ctx context.Context, user *models.User) Plan {
	now := s.now()

	stripeActive := user.StripePriceID != nil &&
		user.StripeCurrentPeriodEnd != nil &&
		user.StripeCurrentPeriodEnd.Add(periodGrace).After(now)
	esewaActive := user.EsewaCurrentPeriodEnd != nil &&
		user.EsewaCurrentPeriodEnd.Add(periodGrace).After(now)

	plan := Plan{
		Name:                   planFree,
		IsSubscribed:           stripeActive || esewaActive,
		PaymentMethod:          user.PaymentMethod,
		StripeSubscriptionID:   user.StripeSubscriptionID,
		StripeCurrentPeriodEnd: user.StripeCurrentPeriodEnd,
		EsewaCurrentPeriodEnd:  user.EsewaCurrentPeriodEnd,
	}
	if plan.IsSubscribed {
		plan.Name = planPro
	}

	if stripeActive && user.StripeSubscriptionID != nil {
		sub, err := s.billing.GetSubscription(ctx, *user.StripeSubscriptionID)
		if err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "failed to load stripe subscription state")
		} else if sub != nil {
			plan.IsCanceled = sub.CancelAtPeriodEnd
		}
	}
	return plan
}

func (s *Service) mustFindUser(ctx context.Context, userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
