package handler

import (
	"time"

	"github.com/fastqash/blog/internal/config"
	"github.com/fastqash/blog/internal/pagination"
	"github.com/fastqash/blog/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	relatedPostLimit = 3
	loginMaxFailures = 5
	loginWindow      = 15 * time.Minute
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	manager  *service.PostManager
	listings *service.ListingService
	auth     *service.AuthService
	limiter  *LoginLimiter
	log      *zap.SugaredLogger
	cfg      config.AppConfig

	sitemapGroup singleflight.Group
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, images service.ImageHost, renderer service.FragmentRenderer, cfg config.AppConfig, log *zap.SugaredLogger) *API {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	posts := service.NewPostService(gdb)
	return &API{
		db:       gdb,
		posts:    posts,
		manager:  service.NewPostManager(posts, images, cfg.ImageFolder, log),
		listings: service.NewListingService(posts, renderer, pagination.DefaultStrategy),
		auth:     service.NewAuthService(gdb),
		limiter:  NewLoginLimiter(loginMaxFailures, loginWindow),
		log:      log,
		cfg:      cfg,
	}
}

// Close 停止后台清理任务。
func (a *API) Close() {
	a.limiter.Stop()
}

// renderHTML 在渲染模板前附加站点公共数据。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.cfg.SiteName
	}
	if _, exists := payload["siteBaseUrl"]; !exists {
		payload["siteBaseUrl"] = a.cfg.SiteBaseURL
	}
	c.HTML(status, template, payload)
}
