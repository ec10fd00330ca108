package service

import (
	"context"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/pagination"
)

const defaultPerPage = 10

// ListingQuery 是一次列表请求的参数。
type ListingQuery struct {
	Query   string
	Page    int
	PerPage int
}

// Listing 是组合后的一页列表结果。
type Listing struct {
	Posts      []db.Post
	Query      string
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
	Pager      pagination.Pager
}

// Fragment 是增量加载时返回的 HTML 片段。
type Fragment struct {
	PostsHTML      string `json:"postsHtml"`
	PaginationHTML string `json:"paginationHtml"`
}

// FragmentRenderer 将文章列表与分页控件渲染为 HTML 片段。
type FragmentRenderer interface {
	RenderPosts(posts []db.Post) (string, error)
	RenderPagination(pager pagination.Pager, link pagination.Link) (string, error)
}

// ListingService 组合搜索条件、分页与文章存储，供前台与后台列表共用。
type ListingService struct {
	posts    *PostService
	renderer FragmentRenderer
	strategy pagination.Strategy
}

// NewListingService creates a ListingService instance.
func NewListingService(posts *PostService, renderer FragmentRenderer, strategy pagination.Strategy) *ListingService {
	return &ListingService{posts: posts, renderer: renderer, strategy: strategy}
}

// Compose 查询一页文章并计算分页控件。超出范围的页码不做修正，得到空列表。
func (s *ListingService) Compose(ctx context.Context, q ListingQuery) (*Listing, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	filter := BuildFilter(q.Query)
	offset, limit := pagination.Window(page, perPage)

	posts, total, err := s.posts.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := pagination.TotalPages(total, perPage)
	return &Listing{
		Posts:      posts,
		Query:      filter.Term(),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		Pager:      s.strategy.Build(page, totalPages),
	}, nil
}

// Fragment 组合列表并渲染为片段，link 决定分页链接的形式。
func (s *ListingService) Fragment(ctx context.Context, q ListingQuery, link pagination.Link) (Fragment, error) {
	listing, err := s.Compose(ctx, q)
	if err != nil {
		return Fragment{}, err
	}
	return s.Render(listing, link)
}

// Render 将已组合的列表渲染为片段。
func (s *ListingService) Render(listing *Listing, link pagination.Link) (Fragment, error) {
	postsHTML, err := s.renderer.RenderPosts(listing.Posts)
	if err != nil {
		return Fragment{}, err
	}

	paginationHTML, err := s.renderer.RenderPagination(listing.Pager, link.WithQuery(listing.Query))
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{PostsHTML: postsHTML, PaginationHTML: paginationHTML}, nil
}
