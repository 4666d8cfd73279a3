package files

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Aryangurung1/HellooBuddy/internal/users"
	"github.com/Aryangurung1/HellooBuddy/pkg/db/models"
	"github.com/Aryangurung1/HellooBuddy/pkg/enums"
	pkgerrors "github.com/Aryangurung1/HellooBuddy/pkg/errors"
	"github.com/Aryangurung1/HellooBuddy/pkg/logger"
)

func setupFilesTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE files (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  key TEXT NOT NULL UNIQUE,
  url TEXT NOT NULL,
  upload_status TEXT NOT NULL DEFAULT 'PENDING',
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
)`, `
CREATE TABLE messages (
  id TEXT PRIMARY KEY,
  file_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  text TEXT NOT NULL,
  is_user_message INTEGER NOT NULL,
  created_at DATETIME NOT NULL
)`}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}
	return conn
}

func testFileService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Users:  users.NewRepository(conn),
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc
}

func seedFileUser(t *testing.T, conn *gorm.DB, id string, admin bool) {
	t.Helper()
	if err := conn.Create(&models.User{ID: id, Email: id + "@example.com", IsAdmin: admin}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedFile(t *testing.T, conn *gorm.DB, userID, name string, status enums.UploadStatus) models.File {
	t.Helper()
	file := models.File{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Key:          uuid.NewString(),
		URL:          "https://files.example.com/" + name,
		UploadStatus: status,
	}
	if err := conn.Create(&file).Error; err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return file
}

func seedMessage(t *testing.T, conn *gorm.DB, fileID uuid.UUID, userID, text string, createdAt time.Time) models.Message {
	t.Helper()
	message := models.Message{
		ID:            uuid.New(),
		FileID:        fileID,
		UserID:        userID,
		Text:          text,
		IsUserMessage: true,
	}
	if err := conn.Create(&message).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if err := conn.Model(&message).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate message: %v", err)
	}
	message.CreatedAt = createdAt
	return message
}

func TestUploadStatusHidesForeignFiles(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_1", false)
	seedFileUser(t, conn, "kp_2", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)

	status, err := svc.UploadStatus(ctx, "kp_1", file.ID)
	if err != nil {
		t.Fatalf("upload status: %v", err)
	}
	if status != enums.UploadStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", status)
	}

	status, err = svc.UploadStatus(ctx, "kp_2", file.ID)
	if err != nil {
		t.Fatalf("upload status: %v", err)
	}
	if status != enums.UploadStatusPending {
		t.Fatalf("foreign file must read as PENDING, got %s", status)
	}
}

func TestGetByKeyScopedToOwner(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_1", false)
	seedFileUser(t, conn, "kp_2", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)

	found, err := svc.GetByKey(ctx, "kp_1", file.Key)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if found.ID != file.ID {
		t.Fatalf("expected %s, got %s", file.ID, found.ID)
	}

	if _, err := svc.GetByKey(ctx, "kp_2", file.Key); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign key, got %v", err)
	}
}

func TestDeleteRemovesFileAndMessages(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_1", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)
	seedMessage(t, conn, file.ID, "kp_1", "hello", time.Now())

	deleted, err := svc.Delete(ctx, "kp_1", file.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != file.ID {
		t.Fatalf("expected deleted record returned, got %s", deleted.ID)
	}

	var fileCount, messageCount int64
	if err := conn.Model(&models.File{}).Count(&fileCount).Error; err != nil {
		t.Fatalf("count files: %v", err)
	}
	if err := conn.Model(&models.Message{}).Count(&messageCount).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if fileCount != 0 || messageCount != 0 {
		t.Fatalf("expected file and chat history removed, got %d files %d messages", fileCount, messageCount)
	}

	if _, err := svc.Delete(ctx, "kp_1", file.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMessagesPaginatesNewestFirst(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_1", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	var seeded []models.Message
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedMessage(t, conn, file.ID, "kp_1", "m", base.Add(time.Duration(i)*time.Minute)))
	}

	page, err := svc.Messages(ctx, "kp_1", file.ID, 2, "")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(page.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page.Messages))
	}
	if page.Messages[0].ID != seeded[4].ID || page.Messages[1].ID != seeded[3].ID {
		t.Fatalf("expected newest first, got %+v", page.Messages)
	}
	if page.NextCursor == nil {
		t.Fatal("expected next cursor")
	}

	page2, err := svc.Messages(ctx, "kp_1", file.ID, 2, *page.NextCursor)
	if err != nil {
		t.Fatalf("messages page 2: %v", err)
	}
	if len(page2.Messages) != 2 || page2.Messages[0].ID != seeded[2].ID {
		t.Fatalf("expected page to start at the cursor message, got %+v", page2.Messages)
	}
}

func TestMessagesRequireFileOwnership(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_1", false)
	seedFileUser(t, conn, "kp_2", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)

	if _, err := svc.Messages(ctx, "kp_2", file.ID, 10, ""); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign file, got %v", err)
	}
	if _, err := svc.Messages(ctx, "kp_1", file.ID, 10, "junk"); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for malformed cursor, got %v", err)
	}
}

func TestAdminPDFOperations(t *testing.T) {
	conn := setupFilesTestDB(t)
	svc := testFileService(t, conn)
	ctx := context.Background()

	seedFileUser(t, conn, "kp_admin", true)
	seedFileUser(t, conn, "kp_1", false)
	file := seedFile(t, conn, "kp_1", "doc.pdf", enums.UploadStatusSuccess)

	if _, err := svc.AdminListPDFs(ctx, "kp_1", "kp_1"); pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}

	list, err := svc.AdminListPDFs(ctx, "kp_admin", "kp_1")
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "doc.pdf" {
		t.Fatalf("unexpected listing %+v", list)
	}

	deleted, err := svc.AdminDeletePDF(ctx, "kp_admin", file.ID)
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if deleted.ID != file.ID {
		t.Fatalf("expected deleted record returned, got %s", deleted.ID)
	}
	if _, err := svc.AdminDeletePDF(ctx, "kp_admin", file.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
