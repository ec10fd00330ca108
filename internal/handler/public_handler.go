package handler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/fastqash/blog/internal/metrics"
	"github.com/fastqash/blog/internal/pagination"
	"github.com/fastqash/blog/internal/service"
	"github.com/fastqash/blog/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// listingSurface 描述一个文章列表入口。
type listingSurface struct {
	name     string
	template string
	endpoint string
	link     pagination.Link
	perPage  int
}

func (a *API) homeSurface() listingSurface {
	return listingSurface{
		name:     "home",
		template: "home.html",
		endpoint: "/",
		link:     pagination.Link{Path: "/"},
		perPage:  a.cfg.HomePerPage,
	}
}

func (a *API) blogSurface() listingSurface {
	return listingSurface{
		name:     "blog",
		template: "blog.html",
		endpoint: "/blog/search",
		link:     pagination.Link{Path: "/blog", QueryParam: "q"},
		perPage:  a.cfg.BlogPerPage,
	}
}

// ShowHome renders the landing page with the latest posts.
// 异步请求只返回文章与分页片段。
func (a *API) ShowHome(c *gin.Context) {
	a.serveListing(c, a.homeSurface(), "")
}

// ShowBlog renders the blog index with search.
func (a *API) ShowBlog(c *gin.Context) {
	a.serveListing(c, a.blogSurface(), c.Query("q"))
}

// SearchBlog 总是返回 JSON 片段 {postsHtml, paginationHtml}。
func (a *API) SearchBlog(c *gin.Context) {
	surface := a.blogSurface()
	surface.link.Script = true

	query := service.ListingQuery{
		Query:   c.Query("q"),
		Page:    pagination.ParsePage(c.Query("page")),
		PerPage: surface.perPage,
	}

	fragment, err := a.listings.Fragment(c.Request.Context(), query, surface.link)
	if err != nil {
		a.log.Errorw("blog search failed", "q", query.Query, "page", query.Page, "err", err)
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to search posts")
		return
	}

	metrics.ListingRequests.WithLabelValues("search", "fragment").Inc()
	c.JSON(http.StatusOK, fragment)
}

func (a *API) serveListing(c *gin.Context, surface listingSurface, rawQuery string) {
	ctx := c.Request.Context()
	query := service.ListingQuery{
		Query:   rawQuery,
		Page:    pagination.ParsePage(c.Query("page")),
		PerPage: surface.perPage,
	}

	listing, err := a.listings.Compose(ctx, query)
	if err != nil {
		a.internalError(c, "compose listing failed", err, "surface", surface.name)
		return
	}

	metrics.ListingRequests.WithLabelValues(surface.name, fragmentMode(c)).Inc()

	if wantsFragment(c) {
		fragment, err := a.listings.Render(listing, surface.link)
		if err != nil {
			a.internalError(c, "render listing fragment failed", err, "surface", surface.name)
			return
		}
		c.JSON(http.StatusOK, fragment)
		return
	}

	data := gin.H{
		"posts":           listing.Posts,
		"query":           listing.Query,
		"paging":          view.PaginationView{Pager: listing.Pager, Link: surface.link.WithQuery(listing.Query)},
		"listingScript":   true,
		"listingEndpoint": surface.endpoint,
	}

	if surface.name == "blog" {
		data["title"] = "Blog"
		categories, err := a.posts.DistinctCategories(ctx)
		if err != nil {
			a.log.Warnw("load categories failed", "err", err)
		}
		data["categories"] = categories
	}

	a.renderHTML(c, http.StatusOK, surface.template, data)
}

// ShowPostDetail renders a post by slug with its related posts.
func (a *API) ShowPostDetail(c *gin.Context) {
	ctx := c.Request.Context()

	post, err := a.posts.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.internalError(c, "load post failed", err, "slug", c.Param("slug"))
		return
	}

	htmlContent, err := renderMarkdown(post.Content)
	if err != nil {
		a.internalError(c, "render markdown failed", err, "post_id", post.ID)
		return
	}

	related, err := a.posts.Related(ctx, post, relatedPostLimit)
	if err != nil {
		a.log.Warnw("load related posts failed", "post_id", post.ID, "err", err)
		related = nil
	}

	a.renderHTML(c, http.StatusOK, "post_detail.html", gin.H{
		"title":       post.Title,
		"description": post.Teaser(160),
		"post":        post,
		"content":     htmlContent,
		"related":     related,
	})
}

// ShowGallery 展示所有文章的封面图片。
func (a *API) ShowGallery(c *gin.Context) {
	posts, err := a.posts.ListWithImages(c.Request.Context())
	if err != nil {
		a.internalError(c, "load gallery failed", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "gallery.html", gin.H{
		"title": "Gallery",
		"posts": posts,
	})
}

// Healthz 检查数据库连接。
func (a *API) Healthz(c *gin.Context) {
	if err := a.ping(c.Request.Context()); err != nil {
		a.log.Errorw("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// NotFound 渲染 404 页面。
func (a *API) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/blog/search") || wantsFragment(c) {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{"title": "Not Found"})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}
