package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/config"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
	pkgstripe "github.com/Aryangurung1/HellooBuddy/pkg/stripe"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type stubBilling struct {
	checkoutURL    string
	portalURL      string
	checkoutParams *stripe.CheckoutSessionParams
	portalParams   *stripe.BillingPortalSessionParams
	subscription   *stripe.Subscription
	subErr         error
}

func (s *stubBilling) NewCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.checkoutParams = params
	return &stripe.CheckoutSession{URL: s.checkoutURL}, nil
}

func (s *stubBilling) NewPortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	s.portalParams = params
	return &stripe.BillingPortalSession{URL: s.portalURL}, nil
}

func (s *stubBilling) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if s.subErr != nil {
		return nil, s.subErr
	}
	return s.subscription, nil
}

func setupSubscriptionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = conn.Exec(`
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  image TEXT,
  is_admin INTEGER NOT NULL DEFAULT 0,
  is_suspended INTEGER NOT NULL DEFAULT 0,
  has_accepted_terms INTEGER NOT NULL DEFAULT 0,
  stripe_customer_id TEXT,
  stripe_subscription_id TEXT,
  stripe_price_id TEXT,
  stripe_current_period_end DATETIME,
  esewa_payment_id TEXT,
  esewa_current_period_end DATETIME,
  payment_method TEXT,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
)`).Error
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return conn
}

func testSubscriptionService(t *testing.T, conn *gorm.DB, billing *stubBilling) *Service {
	t.Helper()

	stripeClient, err := pkgstripe.NewClient(context.Background(), config.StripeConfig{
		APIKey:     "sk_test_abc",
		Env:        "test",
		ProPriceID: "price_pro",
		BillingURL: "https://app.example.com/billing",
	}, nil)
	if err != nil {
		t.Fatalf("failed to build stripe client: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Users:   users.NewRepository(conn),
		Stripe:  stripeClient,
		Billing: billing,
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Now:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestResolveFreePlan(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	svc := testSubscriptionService(t, conn, &stubBilling{})

	if err := conn.Create(&models.User{ID: "kp_1", Email: "a@example.com"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	plan, err := svc.Resolve(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if plan.IsSubscribed || plan.Name != "Free" {
		t.Fatalf("expected free plan, got %+v", plan)
	}
}

func TestResolveHonorsGraceWindow(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	svc := testSubscriptionService(t, conn, &stubBilling{})

	// Expired twelve hours ago; still inside the one-day grace window.
	end := testNow.Add(-12 * time.Hour)
	method := enums.PaymentMethodEsewa
	user := models.User{ID: "kp_1", Email: "a@example.com", EsewaCurrentPeriodEnd: &end, PaymentMethod: &method}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	plan, err := svc.Resolve(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !plan.IsSubscribed || plan.Name != "Pro" {
		t.Fatalf("expected pro within grace window, got %+v", plan)
	}

	// A day and a half out is past the grace window.
	stale := testNow.Add(-36 * time.Hour)
	if err := conn.Model(&models.User{}).Where("id = ?", "kp_1").Update("esewa_current_period_end", stale).Error; err != nil {
		t.Fatalf("update user: %v", err)
	}
	plan, err = svc.Resolve(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if plan.IsSubscribed {
		t.Fatalf("expected expired plan, got %+v", plan)
	}
}

func TestResolveReportsStripeCancelation(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	billing := &stubBilling{subscription: &stripe.Subscription{CancelAtPeriodEnd: true}}
	svc := testSubscriptionService(t, conn, billing)

	end := testNow.AddDate(0, 0, 10)
	priceID := "price_pro"
	subID := "sub_123"
	user := models.User{ID: "kp_1", Email: "a@example.com", StripePriceID: &priceID, StripeSubscriptionID: &subID, StripeCurrentPeriodEnd: &end}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	plan, err := svc.Resolve(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !plan.IsSubscribed || !plan.IsCanceled {
		t.Fatalf("expected subscribed and canceling, got %+v", plan)
	}
}

func TestResolveSwallowsStripeLookupFailure(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	billing := &stubBilling{subErr: errors.New("stripe down")}
	svc := testSubscriptionService(t, conn, billing)

	end := testNow.AddDate(0, 0, 10)
	priceID := "price_pro"
	subID := "sub_123"
	user := models.User{ID: "kp_1", Email: "a@example.com", StripePriceID: &priceID, StripeSubscriptionID: &subID, StripeCurrentPeriodEnd: &end}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	plan, err := svc.Resolve(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("resolve must not fail on stripe lookup errors: %v", err)
	}
	if !plan.IsSubscribed || plan.IsCanceled {
		t.Fatalf("expected subscribed and not canceled, got %+v", plan)
	}
}

func TestCheckoutCreatesSessionForNewSubscriber(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	billing := &stubBilling{checkoutURL: "https://checkout.stripe.com/c/abc"}
	svc := testSubscriptionService(t, conn, billing)

	if err := conn.Create(&models.User{ID: "kp_1", Email: "a@example.com"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	url, err := svc.Checkout(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if url != "https://checkout.stripe.com/c/abc" {
		t.Fatalf("unexpected url %q", url)
	}
	params := billing.checkoutParams
	if params == nil {
		t.Fatal("expected checkout session params")
	}
	if got := stripe.StringValue(params.Mode); got != string(stripe.CheckoutSessionModeSubscription) {
		t.Fatalf("expected subscription mode, got %q", got)
	}
	if len(params.LineItems) != 1 || stripe.StringValue(params.LineItems[0].Price) != "price_pro" {
		t.Fatalf("expected pro price line item, got %+v", params.LineItems)
	}
	if params.Metadata["userId"] != "kp_1" {
		t.Fatalf("expected user id in metadata, got %+v", params.Metadata)
	}
}

func TestCheckoutReturnsPortalForActiveSubscriber(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	billing := &stubBilling{portalURL: "https://billing.stripe.com/p/abc"}
	svc := testSubscriptionService(t, conn, billing)

	end := testNow.AddDate(0, 0, 10)
	priceID := "price_pro"
	customerID := "cus_123"
	user := models.User{ID: "kp_1", Email: "a@example.com", StripePriceID: &priceID, StripeCustomerID: &customerID, StripeCurrentPeriodEnd: &end}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	url, err := svc.Checkout(context.Background(), "kp_1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if url != "https://billing.stripe.com/p/abc" {
		t.Fatalf("unexpected url %q", url)
	}
	if billing.portalParams == nil || stripe.StringValue(billing.portalParams.Customer) != "cus_123" {
		t.Fatalf("expected portal session for cus_123, got %+v", billing.portalParams)
	}
}

func TestResolveUnknownUser(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	svc := testSubscriptionService(t, conn, &stubBilling{})

	if _, err := svc.Resolve(context.Background(), "kp_missing"); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), ""); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
