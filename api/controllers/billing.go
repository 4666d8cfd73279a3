package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/payments"
	"github.com/Aryangurung1/HellooBuddy/internal/subscriptions"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

type invoiceSummary struct {
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
}

func toInvoiceSummary(invoice *models.Invoice) invoiceSummary {
	return invoiceSummary{
		ID:                      invoice.ID,
		UserID:                  invoice.UserID,
		Amount:                  invoice.Amount,
		Currency:                invoice.Currency,
		Status:                  invoice.Status,
		PaymentMethod:           invoice.PaymentMethod,
		PaymentID:               invoice.PaymentID,
		SubscriptionPeriodStart: invoice.SubscriptionPeriodStart,
		SubscriptionPeriodEnd:   invoice.SubscriptionPeriodEnd,
		Description:             invoice.Description,
		PaidAt:                  invoice.PaidAt,
		CreatedAt:               invoice.CreatedAt,
	}
}

// SubscriptionPlan reports the caller's resolved plan across both providers.
func SubscriptionPlan(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		plan, err := svc.Resolve(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

// StripeCheckout returns a Stripe URL: the billing portal for active
// subscribers, a fresh checkout session otherwise.
func StripeCheckout(svc *subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		url, err := svc.Checkout(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

type esewaConfirmRequest struct {
	TransactionCode string `json:"transaction_code" validate:"required"`
}

// EsewaConfirm settles a client-reported wallet payment and opens the
// thirty-day subscription window.
func EsewaConfirm(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var req esewaConfirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.RecordWalletPayment(r.Context(), middleware.UserIDFromContext(r.Context()), req.TransactionCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toInvoiceSummary(invoice))
	}
}
