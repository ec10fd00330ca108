package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/imagehost"
)

func TestPostService_CreateDerivesSlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	post, err := svc.Create(ctx, PostFields{Title: "  Hello, World!  ", Content: "body"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if post.Slug != "hello-world" {
		t.Fatalf("expected slug hello-world, got %q", post.Slug)
	}
	if post.Title != "Hello, World!" {
		t.Fatalf("title should be trimmed, got %q", post.Title)
	}
	if post.Category != db.DefaultCategory {
		t.Fatalf("expected default category, got %q", post.Category)
	}

	found, err := svc.GetBySlug(ctx, "hello-world")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if found.ID != post.ID {
		t.Fatalf("expected post %d, got %d", post.ID, found.ID)
	}
}

func TestPostService_CreateRejectsDuplicateSlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	if _, err := svc.Create(ctx, PostFields{Title: "Hello, World!"}); err != nil {
		t.Fatalf("create first post: %v", err)
	}

	_, err := svc.Create(ctx, PostFields{Title: "hello world"})
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}

	var count int64
	gdb.Model(&db.Post{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one stored post, got %d", count)
	}
}

func TestPostService_CreateValidatesTitle(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))

	for _, title := range []string{"", "   ", "!!!"} {
		_, err := svc.Create(context.Background(), PostFields{Title: title})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
}

func TestPostService_UpdateFollowsTitle(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	post, err := svc.Create(ctx, PostFields{
		Title: "Old title",
		Image: &imagehost.Asset{URL: "https://img.example.com/a.jpg", Key: "a"},
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	updated, err := svc.Update(ctx, post.ID, PostFields{Title: "New title", Category: "Kenya"})
	if err != nil {
		t.Fatalf("update post: %v", err)
	}

	if updated.Slug != "new-title" {
		t.Fatalf("slug should follow the title, got %q", updated.Slug)
	}
	if updated.ImageKey != "a" {
		t.Fatalf("image should be kept when none is supplied, got %q", updated.ImageKey)
	}
	if updated.Category != "Kenya" {
		t.Fatalf("expected category Kenya, got %q", updated.Category)
	}

	if _, err := svc.GetBySlug(ctx, "old-title"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("old slug should no longer resolve, got %v", err)
	}
}

func TestPostService_UpdateConflictsAndMissing(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	first, _ := svc.Create(ctx, PostFields{Title: "First"})
	second, _ := svc.Create(ctx, PostFields{Title: "Second"})

	if _, err := svc.Update(ctx, second.ID, PostFields{Title: "first"}); !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict, got %v", err)
	}

	// 标题不变时不应与自身冲突
	if _, err := svc.Update(ctx, first.ID, PostFields{Title: "First", Excerpt: "changed"}); err != nil {
		t.Fatalf("update with same title: %v", err)
	}

	if _, err := svc.Update(ctx, 9999, PostFields{Title: "Ghost"}); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_Delete(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	post, _ := svc.Create(ctx, PostFields{Title: "To delete"})
	if err := svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := svc.Get(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestPostService_ListPaginatesNewestFirst(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()
	seedPosts(t, gdb, 7, "General")

	posts, total, err := svc.List(ctx, Filter{}, 0, 3)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if total != 7 {
		t.Fatalf("expected total 7, got %d", total)
	}
	if len(posts) != 3 || posts[0].Title != "Post 7" || posts[2].Title != "Post 5" {
		t.Fatalf("unexpected first page: %+v", titles(posts))
	}

	posts, _, err = svc.List(ctx, Filter{}, 6, 3)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Post 1" {
		t.Fatalf("unexpected last page: %+v", titles(posts))
	}

	posts, total, err = svc.List(ctx, Filter{}, 999*3, 3)
	if err != nil {
		t.Fatalf("list out of range: %v", err)
	}
	if len(posts) != 0 || total != 7 {
		t.Fatalf("out of range page should be empty with total 7, got %d posts total %d", len(posts), total)
	}
}

func TestPostService_ListTieBreaksOnID(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := seedPost(t, gdb, db.Post{Title: "A", Slug: "a", CreatedAt: at})
	b := seedPost(t, gdb, db.Post{Title: "B", Slug: "b", CreatedAt: at})

	posts, _, err := svc.List(context.Background(), Filter{}, 0, 10)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if posts[0].ID != b.ID || posts[1].ID != a.ID {
		t.Fatalf("expected higher id first, got %v", titles(posts))
	}
}

func TestPostService_ListFilters(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	seedPost(t, gdb, db.Post{Title: "Sending money to KENYA", Slug: "kenya-title"})
	seedPost(t, gdb, db.Post{Title: "Fees", Excerpt: "cheap transfers to kenya", Slug: "kenya-excerpt"})
	seedPost(t, gdb, db.Post{Title: "M-Pesa", Category: "Kenya", Slug: "kenya-category"})
	seedPost(t, gdb, db.Post{Title: "Ghana", Content: "kenya only in content", Slug: "ghana"})
	seedPost(t, gdb, db.Post{Title: "50% off fees", Slug: "fifty"})
	seedPost(t, gdb, db.Post{Title: "500 reasons", Slug: "five-hundred"})

	posts, total, err := svc.List(ctx, BuildFilter("  kenya "), 0, 10)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if total != 3 || len(posts) != 3 {
		t.Fatalf("expected 3 kenya posts, got %d: %v", total, titles(posts))
	}

	posts, total, err = svc.List(ctx, BuildFilter("50%"), 0, 10)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if total != 1 || posts[0].Slug != "fifty" {
		t.Fatalf("percent sign should match literally, got %v", titles(posts))
	}
}

func TestPostService_ListFiltersFoldNonASCII(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	cafe := seedPost(t, gdb, db.Post{Title: "Café Élan", Slug: "cafe-elan"})
	seedPost(t, gdb, db.Post{Title: "Elan without accent", Slug: "elan"})

	for _, query := range []string{"élan", "ÉLAN", "CAFÉ"} {
		posts, total, err := svc.List(ctx, BuildFilter(query), 0, 10)
		if err != nil {
			t.Fatalf("list posts: %v", err)
		}
		if total != 1 || len(posts) != 1 || posts[0].ID != cafe.ID {
			t.Fatalf("query %q: expected only %q, got %v", query, cafe.Title, titles(posts))
		}
		if !BuildFilter(query).Matches(cafe) {
			t.Fatalf("query %q: in-memory match should agree with the database", query)
		}
	}
}

func TestPostService_RelatedSameCategory(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	current := seedPost(t, gdb, db.Post{Title: "Current", Slug: "current", Category: "Visa", CreatedAt: base})
	for i, slug := range []string{"v1", "v2", "v3", "v4"} {
		seedPost(t, gdb, db.Post{Title: slug, Slug: slug, Category: "Visa", CreatedAt: base.Add(time.Duration(i+1) * time.Hour)})
	}
	seedPost(t, gdb, db.Post{Title: "Other", Slug: "other", Category: "Jobs", CreatedAt: base.Add(10 * time.Hour)})

	related, err := svc.Related(context.Background(), &current, 3)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 3 {
		t.Fatalf("expected 3 related posts, got %d", len(related))
	}
	if related[0].Slug != "v4" || related[2].Slug != "v2" {
		t.Fatalf("related posts should be newest first, got %v", titles(related))
	}
	for _, p := range related {
		if p.ID == current.ID || p.Category != "Visa" {
			t.Fatalf("unexpected related post %+v", p)
		}
	}

	lonely := seedPost(t, gdb, db.Post{Title: "Lonely", Slug: "lonely", Category: "Solo"})
	related, err = svc.Related(context.Background(), &lonely, 3)
	if err != nil || len(related) != 0 {
		t.Fatalf("expected no related posts, got %v (%v)", titles(related), err)
	}
}

func TestPostService_CategoriesImagesAndSitemap(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)
	ctx := context.Background()

	seedPost(t, gdb, db.Post{Title: "A", Slug: "a", Category: "Kenya", ImageURL: "https://img/a.jpg", ImageKey: "a"})
	seedPost(t, gdb, db.Post{Title: "B", Slug: "b", Category: "Ghana"})
	seedPost(t, gdb, db.Post{Title: "C", Slug: "c", Category: "Kenya", ImageURL: "https://img/c.jpg", ImageKey: "c"})

	categories, err := svc.DistinctCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "Ghana" || categories[1] != "Kenya" {
		t.Fatalf("unexpected categories %v", categories)
	}

	withImages, err := svc.ListWithImages(ctx)
	if err != nil {
		t.Fatalf("list with images: %v", err)
	}
	if len(withImages) != 2 {
		t.Fatalf("expected 2 posts with images, got %d", len(withImages))
	}

	entries, err := svc.SitemapEntries(ctx)
	if err != nil {
		t.Fatalf("sitemap entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 sitemap entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Slug == "" || entry.UpdatedAt.IsZero() {
			t.Fatalf("incomplete sitemap entry %+v", entry)
		}
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPosts != 3 || stats.TotalCategories != 2 || stats.TotalImages != 2 || len(stats.RecentPosts) != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPostService_RecomputeSlugs(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, db.Post{Title: "Visa Guide 2024", Slug: "legacy-1"})
	seedPost(t, gdb, db.Post{Title: "Already fine", Slug: "already-fine"})

	updated, err := svc.RecomputeSlugs(context.Background())
	if err != nil {
		t.Fatalf("recompute slugs: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated post, got %d", updated)
	}
	if _, err := svc.GetBySlug(context.Background(), "visa-guide-2024"); err != nil {
		t.Fatalf("recomputed slug should resolve: %v", err)
	}
}

func titles(posts []db.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}
