package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/internal/invoices"
	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

const (
	// walletAmountNPR is the flat monthly price charged through the wallet.
	walletAmountNPR   = 1333
	walletPeriodDays  = 30
	walletDescription = "Monthly Subscription - eSewa Payment"
)

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Users    users.Repository
	Invoices invoices.Repository
	DB       *db.Client
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service records confirmed wallet payments. Stripe payments never pass
// through here; those land via the checkout flow.
type Service struct {
	users    users.Repository
	invoices invoices.Repository
	db       *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Invoices == nil {
		return nil, errors.New("invoices repo is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		users:    params.Users,
		invoices: params.Invoices,
		db:       params.DB,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// RecordWalletPayment marks a verified eSewa transaction as paid: it extends
// the user's wallet subscription window and writes the invoice in one
// transaction. The transaction code is checked before and inside the
// transaction so a retried confirmation cannot double-credit the account.
func (s *Service) RecordWalletPayment(ctx context.Context, userID, transactionCode string) (*models.Invoice, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	transactionCode = strings.TrimSpace(transactionCode)
	if transactionCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction code is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	existing, err := s.invoices.FindByPaymentRef(ctx, enums.PaymentMethodEsewa, transactionCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this payment has already been processed")
	}

	now := s.now()
	periodEnd := now.AddDate(0, 0, walletPeriodDays)
	paymentID := transactionCode
	description := walletDescription
	paidAt := now

	invoice := &models.Invoice{
		UserID:                  userID,
		Amount:                  walletAmountNPR,
		Currency:                enums.CurrencyNPR,
		Status:                  enums.InvoiceStatusPaid,
		PaymentMethod:           enums.PaymentMethodEsewa,
		PaymentID:               &paymentID,
		SubscriptionPeriodStart: now,
		SubscriptionPeriodEnd:   periodEnd,
		Description:             &description,
		PaidAt:                  &paidAt,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		dup, err := s.invoices.WithTx(tx).FindByPaymentRef(ctx, enums.PaymentMethodEsewa, transactionCode)
		if err != nil {
			return err
		}
		if dup != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "this payment has already been processed")
		}
		if err := s.users.WithTx(tx).SetWalletSubscription(ctx, userID, transactionCode, periodEnd); err != nil {
			return err
		}
		return s.invoices.WithTx(tx).Create(ctx, invoice)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_invoices_payment_ref") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this payment has already been processed")
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, userID), "wallet payment recorded")
	return invoice, nil
}
