package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastqash/blog/internal/pagination"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockMySQL(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open gorm with sqlmock: %v", err)
	}
	return gdb, mock
}

func TestPostService_GetWrapsStorageErrors(t *testing.T) {
	gdb, mock := setupMockMySQL(t)
	mock.ExpectQuery("SELECT \\* FROM `posts`").WillReturnError(errors.New("connection reset"))

	_, err := NewPostService(gdb).Get(context.Background(), 1)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if errors.Is(err, ErrPostNotFound) {
		t.Fatalf("storage failure must not look like a missing post")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostService_ListWrapsStorageErrors(t *testing.T) {
	gdb, mock := setupMockMySQL(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `posts`").WillReturnError(errors.New("timeout"))

	listings := NewListingService(NewPostService(gdb), &recordingRenderer{}, pagination.DefaultStrategy)
	if _, err := listings.Compose(context.Background(), ListingQuery{Page: 1, PerPage: 3}); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestPostService_CreateMapsDuplicateEntry(t *testing.T) {
	gdb, mock := setupMockMySQL(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `posts`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts`").
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry 'hello-world' for key 'idx_posts_slug'"})
	mock.ExpectRollback()

	_, err := NewPostService(gdb).Create(context.Background(), PostFields{Title: "Hello, World!"})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
