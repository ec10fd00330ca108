package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:db-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(Config{Path: dsn, Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")

	gdb, err := Open(Config{Driver: DriverSQLite, Path: path, Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if !gdb.Migrator().HasTable(&Post{}) {
		t.Fatalf("posts table should be migrated")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(Config{Driver: DriverMySQL}); err == nil {
		t.Fatalf("expected error for mysql without dsn")
	}
}

func TestSlugIsUnique(t *testing.T) {
	gdb := openTestDB(t)

	if err := gdb.Create(&Post{Title: "A", Slug: "a"}).Error; err != nil {
		t.Fatalf("create first post: %v", err)
	}
	if err := gdb.Create(&Post{Title: "A", Slug: "a"}).Error; err == nil {
		t.Fatalf("expected unique constraint violation")
	}
}

func TestCategoryDefaultsToGeneral(t *testing.T) {
	gdb := openTestDB(t)

	post := Post{Title: "No category", Slug: "no-category"}
	if err := gdb.Omit("Category").Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	var stored Post
	if err := gdb.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if stored.Category != DefaultCategory {
		t.Fatalf("expected default category, got %q", stored.Category)
	}
}

func TestEnsureUser(t *testing.T) {
	gdb := openTestDB(t)

	if err := EnsureUser(gdb, "", "secret"); err != nil {
		t.Fatalf("blank username should be ignored: %v", err)
	}
	if err := EnsureUser(gdb, "admin", "first-password"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := EnsureUser(gdb, "admin", "second-password"); err != nil {
		t.Fatalf("ensure existing user: %v", err)
	}

	var users []User
	if err := gdb.Find(&users).Error; err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(users))
	}
	if !users[0].CheckPassword("first-password") {
		t.Fatalf("existing password should be kept")
	}
	if users[0].Password == "first-password" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestUpsertUserResetsPassword(t *testing.T) {
	gdb := openTestDB(t)

	created, err := UpsertUser(gdb, "editor", "old-password")
	if err != nil || !created {
		t.Fatalf("expected user to be created, created=%v err=%v", created, err)
	}

	created, err = UpsertUser(gdb, "editor", "new-password")
	if err != nil || created {
		t.Fatalf("expected password reset, created=%v err=%v", created, err)
	}

	var user User
	if err := gdb.Where("username = ?", "editor").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.CheckPassword("new-password") || user.CheckPassword("old-password") {
		t.Fatalf("password should have been reset")
	}

	if _, err := UpsertUser(gdb, " ", "x"); err == nil {
		t.Fatalf("blank username should be rejected")
	}
}
