package terms

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"

	"github.com/google/uuid"
)

func setupTermsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	schema := []string{`
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
)`, `
CREATE TABLE terms_and_conditions (
  id TEXT PRIMARY KEY,
  version TEXT NOT NULL,
  content TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
)`}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return conn
}

func testTermsService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Users:  users.NewRepository(conn),
		DB:     db.NewFromGorm(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func seedTermsUser(t *testing.T, conn *gorm.DB, id string, admin, accepted bool) {
	t.Helper()
	user := models.User{ID: id, Email: id + "@example.com", IsAdmin: admin, HasAcceptedTerms: accepted}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestActiveSeedsDefaultDocument(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)

	terms, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if terms.Version != "1.0" || !terms.IsActive {
		t.Fatalf("expected seeded default, got %+v", terms)
	}
	if terms.Content == "" {
		t.Fatal("expected seed content")
	}

	again, err := svc.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	var count int64
	if err := conn.Model(&models.TermsAndConditions{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single seeded row, got %d", count)
	}
	if again.Version != terms.Version {
		t.Fatalf("expected the same document, got %+v", again)
	}
}

func TestLatestRequiresAdmin(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)
	ctx := context.Background()

	seedTermsUser(t, conn, "kp_user", false, false)

	if _, err := svc.Latest(ctx, "kp_user"); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Latest(ctx, ""); pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPublishResetsAcceptance(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)
	ctx := context.Background()

	seedTermsUser(t, conn, "kp_admin", true, true)
	seedTermsUser(t, conn, "kp_user", false, true)

	old := models.TermsAndConditions{ID: uuid.New(), Version: "1.0", Content: "old", IsActive: true}
	if err := conn.Create(&old).Error; err != nil {
		t.Fatalf("seed terms: %v", err)
	}

	published, err := svc.Publish(ctx, "kp_admin", "new content", "2.0")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Version != "2.0" || !published.IsActive {
		t.Fatalf("unexpected published doc: %+v", published)
	}

	var reloaded models.TermsAndConditions
	if err := conn.First(&reloaded, "id = ?", old.ID).Error; err != nil {
		t.Fatalf("reload old terms: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("expected previous version deactivated")
	}

	var accepted int64
	if err := conn.Model(&models.User{}).Where("has_accepted_terms = ?", true).Count(&accepted).Error; err != nil {
		t.Fatalf("count accepted: %v", err)
	}
	if accepted != 0 {
		t.Fatalf("expected all acceptance flags reset, %d remain", accepted)
	}
}

func TestPublishValidatesInput(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)
	ctx := context.Background()

	seedTermsUser(t, conn, "kp_admin", true, false)
	seedTermsUser(t, conn, "kp_user", false, false)

	if _, err := svc.Publish(ctx, "kp_user", "content", "2.0"); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Publish(ctx, "kp_admin", " ", "2.0"); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}
	if _, err := svc.Publish(ctx, "kp_admin", "content", ""); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank version, got %v", err)
	}
}

func TestAcceptAndStatus(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)
	ctx := context.Background()

	seedTermsUser(t, conn, "kp_user", false, false)

	accepted, err := svc.Status(ctx, "kp_user")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if accepted {
		t.Fatal("expected acceptance to start false")
	}

	if err := svc.Accept(ctx, "kp_user"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	accepted, err = svc.Status(ctx, "kp_user")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !accepted {
		t.Fatal("expected acceptance recorded")
	}

	if err := svc.Accept(ctx, "kp_missing"); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestRejectIsANoOp(t *testing.T) {
	conn := setupTermsTestDB(t)
	svc := testTermsService(t, conn)
	ctx := context.Background()

	seedTermsUser(t, conn, "kp_user", false, false)

	if err := svc.Reject(ctx, "kp_user"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("reject must not delete the account, got %d users", count)
	}
}
