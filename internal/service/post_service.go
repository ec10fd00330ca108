package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/imagehost"
	"github.com/fastqash/blog/internal/slug"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostFields are the persisted attributes a caller may set.
// Image 为 nil 时保留原有图片。
type PostFields struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	Image    *imagehost.Asset
}

// SitemapEntry 是站点地图中一篇文章的链接信息。
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// DashboardStats 汇总后台首页展示的数据。
type DashboardStats struct {
	TotalPosts      int64
	TotalCategories int
	TotalImages     int64
	RecentPosts     []db.Post
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Get fetches a post by id.
func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storageError(err)
	}
	return &post, nil
}

// GetBySlug fetches a post by its slug.
func (s *PostService) GetBySlug(ctx context.Context, postSlug string) (*db.Post, error) {
	trimmed := strings.TrimSpace(postSlug)
	if trimmed == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	if err := s.db.WithContext(ctx).Where("slug = ?", trimmed).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storageError(err)
	}
	return &post, nil
}

// Create persists a new post, deriving its slug from the title.
func (s *PostService) Create(ctx context.Context, fields PostFields) (*db.Post, error) {
	post := db.Post{}
	if err := assignFields(&post, fields); err != nil {
		return nil, err
	}

	if err := s.ensureSlugAvailable(ctx, post.Slug, 0); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &post, nil
}

// Update applies updates to an existing post. The slug follows the title.
func (s *PostService) Update(ctx context.Context, id uint, fields PostFields) (*db.Post, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previousSlug := existing.Slug
	if err := assignFields(existing, fields); err != nil {
		return nil, err
	}

	if existing.Slug != previousSlug {
		if err := s.ensureSlugAvailable(ctx, existing.Slug, existing.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return existing, nil
}

// Delete removes a post by id.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Post{}, id)
	if result.Error != nil {
		return storageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// List returns one page of posts matching filter, newest first, together with
// the total number of matches.
func (s *PostService) List(ctx context.Context, filter Filter, offset, limit int) ([]db.Post, int64, error) {
	var total int64
	if err := filter.apply(s.db.WithContext(ctx).Model(&db.Post{})).Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}

	posts := make([]db.Post, 0)
	if total == 0 || int64(offset) >= total {
		return posts, total, nil
	}

	query := filter.apply(s.db.WithContext(ctx).Model(&db.Post{})).
		Order("posts.created_at desc").
		Order("posts.id desc")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, storageError(err)
	}
	return posts, total, nil
}

// DistinctCategories returns every non-empty category in alphabetical order.
func (s *PostService) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.WithContext(ctx).
		Model(&db.Post{}).
		Where("category <> ''").
		Distinct().
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, storageError(err)
	}
	return categories, nil
}

// Related 返回同分类下的其他文章，按创建时间倒序，最多 limit 篇。
func (s *PostService) Related(ctx context.Context, post *db.Post, limit int) ([]db.Post, error) {
	related := make([]db.Post, 0, limit)
	if post == nil || limit <= 0 {
		return related, nil
	}

	if err := s.db.WithContext(ctx).
		Where("category = ? AND id <> ?", post.Category, post.ID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&related).Error; err != nil {
		return nil, storageError(err)
	}
	return related, nil
}

// ListWithImages 返回所有带封面图片的文章，供图库页面使用。
func (s *PostService) ListWithImages(ctx context.Context) ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Where("image_url <> ''").
		Order("created_at desc").
		Order("id desc").
		Find(&posts).Error; err != nil {
		return nil, storageError(err)
	}
	return posts, nil
}

// SitemapEntries 列出全部文章的 slug 与最后修改时间。
func (s *PostService) SitemapEntries(ctx context.Context) ([]SitemapEntry, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).
		Select("slug", "updated_at").
		Order("created_at desc").
		Order("id desc").
		Find(&posts).Error; err != nil {
		return nil, storageError(err)
	}

	entries := make([]SitemapEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, SitemapEntry{Slug: post.Slug, UpdatedAt: post.UpdatedAt})
	}
	return entries, nil
}

// Stats 汇总后台首页的计数与最近文章。
func (s *PostService) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.WithContext(ctx).Model(&db.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return stats, storageError(err)
	}

	categories, err := s.DistinctCategories(ctx)
	if err != nil {
		return stats, err
	}
	stats.TotalCategories = len(categories)

	if err := s.db.WithContext(ctx).Model(&db.Post{}).Where("image_url <> ''").Count(&stats.TotalImages).Error; err != nil {
		return stats, storageError(err)
	}

	recent, _, err := s.List(ctx, Filter{}, 0, 3)
	if err != nil {
		return stats, err
	}
	stats.RecentPosts = recent
	return stats, nil
}

// RecomputeSlugs 按当前标题重新生成所有文章的 slug，返回被修改的数量。
func (s *PostService) RecomputeSlugs(ctx context.Context) (int, error) {
	var posts []db.Post
	if err := s.db.WithContext(ctx).Order("id asc").Find(&posts).Error; err != nil {
		return 0, storageError(err)
	}

	updated := 0
	for _, post := range posts {
		want := slug.Make(post.Title)
		if want == "" || want == post.Slug {
			continue
		}
		if err := s.ensureSlugAvailable(ctx, want, post.ID); err != nil {
			return updated, fmt.Errorf("post %d: %w", post.ID, err)
		}
		if err := s.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", post.ID).Update("slug", want).Error; err != nil {
			return updated, fmt.Errorf("post %d: %w", post.ID, translateWriteError(err))
		}
		updated++
	}
	return updated, nil
}

func (s *PostService) ensureSlugAvailable(ctx context.Context, postSlug string, excludeID uint) error {
	query := s.db.WithContext(ctx).Model(&db.Post{}).Where("slug = ?", postSlug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return storageError(err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrSlugConflict, postSlug)
	}
	return nil
}

func assignFields(post *db.Post, fields PostFields) error {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return invalidField("title", "is required")
	}

	postSlug := slug.Make(title)
	if postSlug == "" {
		return invalidField("title", "must contain letters or digits")
	}

	category := strings.TrimSpace(fields.Category)
	if category == "" {
		category = db.DefaultCategory
	}

	post.Title = title
	post.Slug = postSlug
	post.Excerpt = strings.TrimSpace(fields.Excerpt)
	post.Content = fields.Content
	post.Category = category
	if fields.Image != nil {
		post.ImageURL = fields.Image.URL
		post.ImageKey = fields.Image.Key
	}
	return nil
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrSlugConflict, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %w", ErrSlugConflict, err)
	}

	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrSlugConflict, err)
	}

	return storageError(err)
}
