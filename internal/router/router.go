package router

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fastqash/blog/internal/config"
	"github.com/fastqash/blog/internal/handler"
	"github.com/fastqash/blog/internal/logger"
	"github.com/fastqash/blog/internal/metrics"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionName   = "fastqash_session"
	sessionMaxAge = 3600
)

// Options 汇总构建路由所需的依赖。
type Options struct {
	API       *handler.API
	Templates *template.Template
	DB        *gorm.DB
	Config    config.AppConfig
	Logger    *zap.SugaredLogger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	cfg := opts.Config
	api := opts.API

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(opts.Logger))
	r.Use(requestMetrics())
	r.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      cfg.Development(),
	}))

	// 会话保存在数据库中，过期记录由 store 定期清理
	store := gormsessions.NewStore(opts.DB, true, []byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.SiteBaseURL, "https://") && !cfg.Development(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(opts.Templates)

	// 本地图床的上传目录
	if !cfg.UseCloudinary() {
		r.Static(cfg.UploadURLPath, cfg.UploadDir)
	}

	r.GET("/healthz", api.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/sitemap.xml", api.Sitemap)

	r.GET("/", api.ShowHome)
	r.GET("/blog", api.ShowBlog)
	r.GET("/blog/search", api.SearchBlog)
	r.GET("/blog/:slug", api.ShowPostDetail)
	r.GET("/gallery", api.ShowGallery)
	for _, page := range handler.StaticPages {
		r.GET(page.Path, api.ShowStaticPage(page))
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)
			auth.GET("/", api.ShowDashboard)
			auth.GET("/posts", api.ListPosts)
			auth.GET("/posts/new", api.NewPost)
			auth.POST("/posts", api.CreatePost)
			auth.GET("/posts/edit/:id", api.EditPost)
			auth.POST("/posts/edit/:id", api.UpdatePost)
			auth.POST("/posts/delete/:id", api.DeletePost)
		}
	}

	r.NoRoute(api.NotFound)

	return r
}

// requestMetrics 以路由模板为标签记录请求耗时。
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
