package controllers

import (
	"net/http"
	"time"

	"github.com/Aryangurung1/HellooBuddy/api/middleware"
	"github.com/Aryangurung1/HellooBuddy/api/responses"
	"github.com/Aryangurung1/HellooBuddy/api/validators"
	"github.com/Aryangurung1/HellooBuddy/internal/invoices"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

const (
	defaultInvoiceLimit = 20
	maxInvoiceLimit     = 100
)

// AdminInvoiceStats aggregates revenue over each user's latest invoice.
func AdminInvoiceStats(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		start, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Stats(r.Context(), middleware.UserIDFromContext(r.Context()), invoices.StatsParams{
			Start: start,
			End:   end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminInvoiceList pages through each user's latest invoice, newest first.
func AdminInvoiceList(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultInvoiceLimit, 1, maxInvoiceLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := invoices.ListParams{
			Limit:  limit,
			UserID: validators.ParseQueryString(r, "user_id"),
			Start:  start,
			End:    end,
		}
		if cursor := validators.ParseQueryString(r, "cursor"); cursor != nil {
			params.Cursor = *cursor
		}
		if raw := validators.ParseQueryString(r, "status"); raw != nil {
			status := enums.InvoiceStatus(*raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
				return
			}
			params.Status = &status
		}

		result, err := svc.List(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type createInvoiceRequest struct {
	UserID                  string     `json:"user_id" validate:"required"`
	Amount                  int64      `json:"amount" validate:"required,min=1"`
	Currency                string     `json:"currency" validate:"required"`
	Status                  string     `json:"status" validate:"required"`
	PaymentMethod           string     `json:"payment_method" validate:"required"`
	PaymentID               *string    `json:"payment_id"`
	SubscriptionPeriodStart time.Time  `json:"subscription_period_start" validate:"required"`
	SubscriptionPeriodEnd   time.Time  `json:"subscription_period_end" validate:"required"`
	Description             *string    `json:"description"`
	PaidAt                  *time.Time `json:"paid_at"`
}

// AdminInvoiceCreate records a manual invoice for corrections and testing.
func AdminInvoiceCreate(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoice service unavailable"))
			return
		}

		var req createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), invoices.CreateInput{
			UserID:                  req.UserID,
			Amount:                  req.Amount,
			Currency:                enums.Currency(req.Currency),
			Status:                  enums.InvoiceStatus(req.Status),
			PaymentMethod:           enums.PaymentMethod(req.PaymentMethod),
			PaymentID:               req.PaymentID,
			SubscriptionPeriodStart: req.SubscriptionPeriodStart,
			SubscriptionPeriodEnd:   req.SubscriptionPeriodEnd,
			Description:             req.Description,
			PaidAt:                  req.PaidAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toInvoiceSummary(invoice))
	}
}
