package invoices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/pagination"
)

// nprPerUSD is the fixed conversion rate applied when folding wallet
// revenue into the USD totals.
var nprPerUSD = decimal.NewFromFloat(133.30)

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ServiceParams groups dependencies for the invoice service.
type ServiceParams struct {
	Repo  Repository
	Users userFinder
}

// Service serves the admin revenue surface. Every operation re-checks the
// caller's admin flag against the database rather than trusting the token.
type Service struct {
	repo  Repository
	users userFinder
}

// NewService builds an invoice service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Users == nil {
		return nil, errors.New("users finder is required")
	}
	return &Service{repo: params.Repo, users: params.Users}, nil
}

// Stats aggregates revenue over each user's most recent invoice.
func (s *Service) Stats(ctx context.Context, requesterID string, params StatsParams) (StatsResult, error) {
	if err := s.requireAdmin(ctx, requesterID, "only admins can access invoice statistics"); err != nil {
		return StatsResult{}, err
	}

	end := inclusiveEnd(params.End)

	paid, err := s.repo.LatestPaidPerUser(ctx, params.Start, end)
	if err != nil {
		return StatsResult{}, err
	}

	statusRows, err := s.repo.CountUsersByStatus(ctx, params.Start, end)
	if err != nil {
		return StatsResult{}, err
	}

	total := decimal.Zero
	methodTotals := map[string]*struct {
		count  int64
		amount decimal.Decimal
	}{}
	for _, invoice := range paid {
		usd := amountUSD(invoice)
		total = total.Add(usd)

		key := invoice.PaymentMethod.String()
		entry, ok := methodTotals[key]
		if !ok {
			entry = &struct {
				count  int64
				amount decimal.Decimal
			}{}
			methodTotals[key] = entry
		}
		entry.count++
		entry.amount = entry.amount.Add(usd)
	}

	result := StatsResult{
		TotalRevenue:        total.Round(2).InexactFloat64(),
		StatusCounts:        map[string]int64{},
		PaymentMethodCounts: map[string]MethodStat{},
	}
	for _, row := range statusRows {
		result.StatusCounts[row.Status.String()] = row.Users
	}
	for method, entry := range methodTotals {
		result.PaymentMethodCounts[method] = MethodStat{
			Count:  entry.count,
			Amount: entry.amount.Round(2).InexactFloat64(),
		}
	}
	return result, nil
}

// List pages through each user's most recent invoice, newest first.
func (s *Service) List(ctx context.Context, requesterID string, params ListParams) (ListResult, error) {
	if err := s.requireAdmin(ctx, requesterID, "only admins can access invoice data"); err != nil {
		return ListResult{}, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return ListResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListLatestPerUser(ctx, ListQuery{
		Status: params.Status,
		UserID: params.UserID,
		Start:  params.Start,
		End:    inclusiveEnd(params.End),
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return ListResult{}, err
	}

	result := ListResult{Invoices: make([]InvoiceWithUser, 0, len(rows))}
	for _, row := range rows {
		result.Invoices = append(result.Invoices, toInvoiceWithUser(row))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

// Create records a manual invoice, used for corrections and testing.
func (s *Service) Create(ctx context.Context, requesterID string, input CreateInput) (*models.Invoice, error) {
	if err := s.requireAdmin(ctx, requesterID, "only admins can create invoices"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.SubscriptionPeriodStart.IsZero() || input.SubscriptionPeriodEnd.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription period is required")
	}

	owner, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	invoice := &models.Invoice{
		UserID:                  input.UserID,
		Amount:                  input.Amount,
		Currency:                input.Currency,
		Status:                  input.Status,
		PaymentMethod:           input.PaymentMethod,
		PaymentID:               input.PaymentID,
		SubscriptionPeriodStart: input.SubscriptionPeriodStart,
		SubscriptionPeriodEnd:   input.SubscriptionPeriodEnd,
		Description:             input.Description,
		PaidAt:                  input.PaidAt,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) requireAdmin(ctx context.Context, requesterID, message string) error {
	if strings.TrimSpace(requesterID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be logged in to access this resource")
	}
	user, err := s.users.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, message)
	}
	return nil
}

func amountUSD(invoice models.Invoice) decimal.Decimal {
	amount := decimal.NewFromInt(invoice.Amount)
	if invoice.Currency == enums.CurrencyNPR {
		return amount.Div(nprPerUSD)
	}
	return amount
}

// inclusiveEnd pushes an end date to the last instant of that day.
func inclusiveEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	t := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
	return &t
}

func toInvoiceWithUser(row models.Invoice) InvoiceWithUser {
	out := InvoiceWithUser{
		ID:                      row.ID,
		UserID:                  row.UserID,
		Amount:                  row.Amount,
		Currency:                row.Currency,
		Status:                  row.Status,
		PaymentMethod:           row.PaymentMethod,
		PaymentID:               row.PaymentID,
		SubscriptionPeriodStart: row.SubscriptionPeriodStart,
		SubscriptionPeriodEnd:   row.SubscriptionPeriodEnd,
		Description:             row.Description,
		PaidAt:                  row.PaidAt,
		CreatedAt:               row.CreatedAt,
	}
	if row.User != nil {
		out.User = InvoiceUser{ID: row.User.ID, Email: row.User.Email}
	}
	return out
}
