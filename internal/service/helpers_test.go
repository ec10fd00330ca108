package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/imagehost"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sampleImage = "data:image/png;base64,aGVsbG8="

func setupPostServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.Config{Path: dsn, Logger: logger.Default.LogMode(logger.Silent)})
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

// seedPost 直接写入一篇文章，便于控制创建时间。
func seedPost(t *testing.T, gdb *gorm.DB, post db.Post) db.Post {
	t.Helper()
	if post.Slug == "" {
		post.Slug = fmt.Sprintf("post-%d", time.Now().UnixNano())
	}
	if post.Category == "" {
		post.Category = db.DefaultCategory
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post %q: %v", post.Title, err)
	}
	return post
}

// seedPosts 写入 n 篇文章，编号越大越新。
func seedPosts(t *testing.T, gdb *gorm.DB, n int, category string) []db.Post {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]db.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, seedPost(t, gdb, db.Post{
			Title:     fmt.Sprintf("Post %d", i),
			Slug:      fmt.Sprintf("post-%d", i),
			Category:  category,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	return posts
}

type fakeImageHost struct {
	uploads    int
	destroyed  []string
	uploadErr  error
	destroyErr error
	next       int
}

func (f *fakeImageHost) Upload(_ context.Context, _ string, folder string) (imagehost.Asset, error) {
	f.uploads++
	if f.uploadErr != nil {
		return imagehost.Asset{}, f.uploadErr
	}
	f.next++
	key := fmt.Sprintf("%s/img-%d", folder, f.next)
	return imagehost.Asset{URL: "https://img.example.com/" + key, Key: key}, nil
}

func (f *fakeImageHost) Destroy(_ context.Context, key string) error {
	f.destroyed = append(f.destroyed, key)
	return f.destroyErr
}

var errHostDown = errors.New("host down")
