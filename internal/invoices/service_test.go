package invoices

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/pagination"
)

type stubInvoiceRepo struct {
	paid       []models.Invoice
	statusRows []StatusCount
	listRows   []models.Invoice
	listNext   *pagination.Cursor
	lastQuery  ListQuery
	paidStart  *time.Time
	paidEnd    *time.Time
	created    []*models.Invoice
	byRef      map[string]*models.Invoice
}

func (s *stubInvoiceRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	s.created = append(s.created, invoice)
	return nil
}

func (s *stubInvoiceRepo) FindByPaymentRef(ctx context.Context, method enums.PaymentMethod, paymentID string) (*models.Invoice, error) {
	return s.byRef[method.String()+"|"+paymentID], nil
}

func (s *stubInvoiceRepo) ListLatestPerUser(ctx context.Context, query ListQuery) ([]models.Invoice, *pagination.Cursor, error) {
	s.lastQuery = query
	return s.listRows, s.listNext, nil
}

func (s *stubInvoiceRepo) LatestPaidPerUser(ctx context.Context, start, end *time.Time) ([]models.Invoice, error) {
	s.paidStart = start
	s.paidEnd = end
	return s.paid, nil
}

func (s *stubInvoiceRepo) CountUsersByStatus(ctx context.Context, start, end *time.Time) ([]StatusCount, error) {
	return s.statusRows, nil
}

type stubUserFinder struct {
	users map[string]*models.User
}

func (s *stubUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users[id], nil
}

func testInvoiceService(t *testing.T, repo *stubInvoiceRepo) *Service {
	t.Helper()
	finder := &stubUserFinder{users: map[string]*models.User{
		"kp_admin": {ID: "kp_admin", Email: "admin@example.com", IsAdmin: true},
		"kp_user":  {ID: "kp_user", Email: "user@example.com"},
	}}
	svc, err := NewService(ServiceParams{Repo: repo, Users: finder})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func TestStatsRequiresAdmin(t *testing.T) {
	svc := testInvoiceService(t, &stubInvoiceRepo{})
	ctx := context.Background()

	if _, err := svc.Stats(ctx, "kp_user", StatsParams{}); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
	if _, err := svc.Stats(ctx, "", StatsParams{}); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for anonymous caller, got %v", err)
	}
}

func TestStatsConvertsWalletAmountsToUSD(t *testing.T) {
	repo := &stubInvoiceRepo{
		paid: []models.Invoice{
			{UserID: "kp_1", Amount: 1333, Currency: enums.CurrencyNPR, PaymentMethod: enums.PaymentMethodEsewa, Status: enums.InvoiceStatusPaid},
			{UserID: "kp_2", Amount: 10, Currency: enums.CurrencyUSD, PaymentMethod: enums.PaymentMethodStripe, Status: enums.InvoiceStatusPaid},
		},
		statusRows: []StatusCount{{Status: enums.InvoiceStatusPaid, Users: 2}},
	}
	svc := testInvoiceService(t, repo)

	result, err := svc.Stats(context.Background(), "kp_admin", StatsParams{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	// 1333 NPR / 133.30 = 10.00 USD, plus the 10 USD stripe row.
	if result.TotalRevenue != 20.00 {
		t.Fatalf("expected total revenue 20.00, got %v", result.TotalRevenue)
	}
	esewa := result.PaymentMethodCounts[enums.PaymentMethodEsewa.String()]
	if esewa.Count != 1 || esewa.Amount != 10.00 {
		t.Fatalf("expected esewa {1, 10.00}, got %+v", esewa)
	}
	if result.StatusCounts[enums.InvoiceStatusPaid.String()] != 2 {
		t.Fatalf("expected 2 paid users, got %+v", result.StatusCounts)
	}
}

func TestStatsEndDateIsInclusive(t *testing.T) {
	repo := &stubInvoiceRepo{}
	svc := testInvoiceService(t, repo)

	end := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Stats(context.Background(), "kp_admin", StatsParams{End: &end}); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if repo.paidEnd == nil {
		t.Fatal("expected end bound to be forwarded")
	}
	if repo.paidEnd.Hour() != 23 || repo.paidEnd.Minute() != 59 || repo.paidEnd.Second() != 59 {
		t.Fatalf("expected end pushed to end of day, got %v", repo.paidEnd)
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	svc := testInvoiceService(t, &stubInvoiceRepo{})

	_, err := svc.List(context.Background(), "kp_admin", ListParams{Cursor: "not-a-cursor"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListEncodesNextCursor(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	repo := &stubInvoiceRepo{
		listRows: []models.Invoice{{UserID: "kp_1", Amount: 10, Currency: enums.CurrencyUSD, User: &models.User{ID: "kp_1", Email: "a@example.com"}}},
		listNext: next,
	}
	svc := testInvoiceService(t, repo)

	result, err := svc.List(context.Background(), "kp_admin", ListParams{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Invoices) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Invoices))
	}
	if result.Invoices[0].User.Email != "a@example.com" {
		t.Fatalf("expected owner mapped, got %+v", result.Invoices[0].User)
	}
	if result.NextCursor == nil {
		t.Fatal("expected next cursor")
	}
	parsed, err := pagination.ParseCursor(*result.NextCursor)
	if err != nil || parsed == nil || !parsed.CreatedAt.Equal(next.CreatedAt) {
		t.Fatalf("cursor did not round-trip: %v %v", parsed, err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	repo := &stubInvoiceRepo{}
	svc := testInvoiceService(t, repo)
	ctx := context.Background()
	now := time.Now()

	valid := CreateInput{
		UserID:                  "kp_user",
		Amount:                  1333,
		Currency:                enums.CurrencyNPR,
		Status:                  enums.InvoiceStatusPaid,
		PaymentMethod:           enums.PaymentMethodEsewa,
		SubscriptionPeriodStart: now,
		SubscriptionPeriodEnd:   now.AddDate(0, 0, 30),
	}

	bad := valid
	bad.Amount = 0
	if _, err := svc.Create(ctx, "kp_admin", bad); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	bad = valid
	bad.UserID = "kp_missing"
	if _, err := svc.Create(ctx, "kp_admin", bad); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown owner, got %v", err)
	}

	invoice, err := svc.Create(ctx, "kp_admin", valid)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if invoice == nil || len(repo.created) != 1 {
		t.Fatalf("expected invoice persisted, got %v", repo.created)
	}
}
