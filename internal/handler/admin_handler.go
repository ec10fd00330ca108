package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/metrics"
	"github.com/fastqash/blog/internal/pagination"
	"github.com/fastqash/blog/internal/service"
	"github.com/fastqash/blog/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

// loginForm 是登录表单。
type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if sessions.Default(c).Get(sessionUserIDKey) != nil {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{"title": "Login"})
}

// Login 处理用户登录请求，同一 IP 在窗口期内失败过多会被拒绝。
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderHTML(c, http.StatusBadRequest, "admin_login.html", gin.H{"title": "Login", "error": "Invalid login request"})
		return
	}

	ip := c.ClientIP()
	if !a.limiter.Allow(ip) {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		a.log.Warnw("login throttled", "ip", ip, "username", form.Username)
		a.renderHTML(c, http.StatusTooManyRequests, "admin_login.html", gin.H{
			"title":         "Login",
			"error":         "Too many failed attempts, please try again later",
			"usernameInput": form.Username,
		})
		return
	}

	user, err := a.auth.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			a.log.Infow("login failed", "ip", ip, "username", form.Username)
			a.renderHTML(c, http.StatusUnauthorized, "admin_login.html", gin.H{
				"title":         "Login",
				"error":         "Invalid username or password",
				"usernameInput": form.Username,
			})
			return
		}
		a.internalError(c, "authenticate failed", err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		a.internalError(c, "save session failed", err)
		return
	}

	a.limiter.Reset(ip)
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	a.log.Infow("login succeeded", "ip", ip, "username", user.Username)
	c.Redirect(http.StatusFound, "/admin")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.log.Warnw("clear session failed", "err", err)
	}
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.posts.Stats(c.Request.Context())
	if err != nil {
		a.internalError(c, "load dashboard stats failed", err)
		return
	}

	a.renderAdmin(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title": "Dashboard",
		"stats": stats,
	})
}

// ListPosts 渲染后台文章列表，支持搜索与分页。
func (a *API) ListPosts(c *gin.Context) {
	query := service.ListingQuery{
		Query:   c.Query("search"),
		Page:    pagination.ParsePage(c.Query("page")),
		PerPage: a.cfg.AdminPerPage,
	}
	link := pagination.Link{Path: "/admin/posts", QueryParam: "search"}

	listing, err := a.listings.Compose(c.Request.Context(), query)
	if err != nil {
		a.internalError(c, "list admin posts failed", err)
		return
	}
	metrics.ListingRequests.WithLabelValues("admin", fragmentMode(c)).Inc()

	if wantsFragment(c) {
		fragment, err := a.listings.Render(listing, link)
		if err != nil {
			a.internalError(c, "render admin fragment failed", err)
			return
		}
		c.JSON(http.StatusOK, fragment)
		return
	}

	a.renderAdmin(c, http.StatusOK, "admin_posts.html", gin.H{
		"title":   "Posts",
		"listing": listing,
		"paging":  view.PaginationView{Pager: listing.Pager, Link: link.WithQuery(listing.Query)},
		"flash":   c.Query("flash"),
	})
}

// NewPost 渲染新建文章表单。
func (a *API) NewPost(c *gin.Context) {
	a.renderPostForm(c, http.StatusOK, nil, service.PostInput{Category: db.DefaultCategory}, nil)
}

// CreatePost 处理新建文章表单（或 JSON）提交。
func (a *API) CreatePost(c *gin.Context) {
	var input service.PostInput
	if err := c.ShouldBind(&input); err != nil {
		a.renderPostForm(c, http.StatusBadRequest, nil, input, map[string]string{"form": "could not read the submitted form"})
		return
	}

	post, err := a.manager.Create(c.Request.Context(), input)
	if err != nil {
		a.handlePostWriteError(c, nil, input, err)
		return
	}

	a.log.Infow("post created", "post_id", post.ID, "slug", post.Slug)
	c.Redirect(http.StatusFound, "/admin/posts?flash=Post+created")
}

// EditPost 渲染编辑表单。
func (a *API) EditPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	post, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.internalError(c, "load post failed", err, "post_id", id)
		return
	}

	input := service.PostInput{
		Title:    post.Title,
		Excerpt:  post.Excerpt,
		Content:  post.Content,
		Category: post.Category,
	}
	a.renderPostForm(c, http.StatusOK, post, input, nil)
}

// UpdatePost 处理编辑提交。
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	existing, err := a.posts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.internalError(c, "load post failed", err, "post_id", id)
		return
	}

	var input service.PostInput
	if err := c.ShouldBind(&input); err != nil {
		a.renderPostForm(c, http.StatusBadRequest, existing, input, map[string]string{"form": "could not read the submitted form"})
		return
	}

	post, err := a.manager.Update(c.Request.Context(), id, input)
	if err != nil {
		a.handlePostWriteError(c, existing, input, err)
		return
	}

	a.log.Infow("post updated", "post_id", post.ID, "slug", post.Slug)
	c.Redirect(http.StatusFound, "/admin/posts?flash=Post+updated")
}

// DeletePost 删除文章及其图片。
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	if err := a.manager.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.internalError(c, "delete post failed", err, "post_id", id)
		return
	}

	a.log.Infow("post deleted", "post_id", id)
	c.Redirect(http.StatusFound, "/admin/posts?flash=Post+deleted")
}

func (a *API) handlePostWriteError(c *gin.Context, post *db.Post, input service.PostInput, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusNotFound:
		a.NotFound(c)
	case http.StatusBadRequest, http.StatusConflict:
		a.renderPostForm(c, status, post, input, fieldErrors(err))
	case http.StatusBadGateway:
		a.log.Errorw("image host failed", "err", err)
		c.Error(err)
		a.renderPostForm(c, status, post, input, map[string]string{"imageBase64": "image upload failed, please try again"})
	default:
		a.internalError(c, "save post failed", err)
	}
}

func (a *API) renderPostForm(c *gin.Context, status int, post *db.Post, input service.PostInput, errs map[string]string) {
	title := "New post"
	action := "/admin/posts"
	if post != nil {
		title = "Edit post"
		action = "/admin/posts/edit/" + strconv.FormatUint(uint64(post.ID), 10)
	}

	categories, err := a.posts.DistinctCategories(c.Request.Context())
	if err != nil {
		a.log.Warnw("load categories failed", "err", err)
	}

	a.renderAdmin(c, status, "admin_post_form.html", gin.H{
		"title":       title,
		"action":      action,
		"post":        post,
		"input":       input,
		"categories":  categories,
		"fieldErrors": errs,
	})
}

// renderAdmin 附加当前登录用户名后渲染后台页面。
func (a *API) renderAdmin(c *gin.Context, status int, template string, data gin.H) {
	if username, ok := sessions.Default(c).Get(sessionUsernameKey).(string); ok {
		data["username"] = username
	}
	a.renderHTML(c, status, template, data)
}

// AuthRequired 是一个简单的认证中间件
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
