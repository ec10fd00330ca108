package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fastqash/blog/internal/db"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	gormlogger "gorm.io/gorm/logger"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string `koanf:"listen_addr"`
	Port           string `koanf:"port"`
	DatabaseDriver string `koanf:"database_driver" validate:"oneof=sqlite mysql"`
	DatabasePath   string `koanf:"database_path"`
	DatabaseDSN    string `koanf:"database_dsn" validate:"required_if=DatabaseDriver mysql"`
	SessionSecret  string `koanf:"session_secret" validate:"min=16"`
	GinMode        string `koanf:"gin_mode" validate:"oneof=debug release test"`
	UploadDir      string `koanf:"upload_dir"`
	UploadURLPath  string `koanf:"upload_url_path" validate:"startswith=/"`
	ImageFolder    string `koanf:"image_folder"`
	CloudinaryURL  string `koanf:"cloudinary_url" validate:"omitempty,startswith=cloudinary://"`
	AdminUsername  string `koanf:"admin_username"`
	AdminPassword  string `koanf:"admin_password" validate:"required_with=AdminUsername"`
	SiteBaseURL    string `koanf:"site_base_url" validate:"url"`
	SiteName       string `koanf:"site_name"`
	LogDir         string `koanf:"log_dir"`
	HomePerPage    int    `koanf:"home_per_page" validate:"min=1,max=100"`
	BlogPerPage    int    `koanf:"blog_per_page" validate:"min=1,max=100"`
	AdminPerPage   int    `koanf:"admin_per_page" validate:"min=1,max=100"`
}

// envKeys 是允许从环境变量读取的配置项。
var envKeys = map[string]struct{}{
	"LISTEN_ADDR":     {},
	"PORT":            {},
	"DATABASE_DRIVER": {},
	"DATABASE_PATH":   {},
	"DATABASE_DSN":    {},
	"SESSION_SECRET":  {},
	"GIN_MODE":        {},
	"UPLOAD_DIR":      {},
	"UPLOAD_URL_PATH": {},
	"IMAGE_FOLDER":    {},
	"CLOUDINARY_URL":  {},
	"ADMIN_USERNAME":  {},
	"ADMIN_PASSWORD":  {},
	"SITE_BASE_URL":   {},
	"SITE_NAME":       {},
	"LOG_DIR":         {},
	"HOME_PER_PAGE":   {},
	"BLOG_PER_PAGE":   {},
	"ADMIN_PER_PAGE":  {},
}

// Load 依次读取 .env、可选的 YAML 文件（CONFIG_FILE）和环境变量，
// 为缺失项提供默认值后进行校验。环境变量优先级最高。
func Load() (AppConfig, error) {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return AppConfig{}, fmt.Errorf("load env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// envValue 只保留已知且非空的环境变量，空值不会覆盖配置文件。
func envValue(name, value string) (string, interface{}) {
	if _, ok := envKeys[name]; !ok {
		return "", nil
	}
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(name), value
}

func (c *AppConfig) applyDefaults() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = "sqlite"
	}

	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	if c.DatabasePath == "" {
		c.DatabasePath = "blog.db"
	}
	c.DatabaseDSN = strings.TrimSpace(c.DatabaseDSN)

	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	if c.SessionSecret == "" {
		c.SessionSecret = "fastqash-blog-dev-secret"
	}

	c.GinMode = strings.TrimSpace(c.GinMode)
	if c.GinMode == "" {
		c.GinMode = "release"
	}

	c.UploadDir = strings.TrimSpace(c.UploadDir)
	if c.UploadDir == "" {
		c.UploadDir = "web/static/uploads"
	}

	c.UploadURLPath = strings.TrimRight(strings.TrimSpace(c.UploadURLPath), "/")
	if c.UploadURLPath == "" {
		c.UploadURLPath = "/static/uploads"
	}

	c.ImageFolder = strings.TrimSpace(c.ImageFolder)
	if c.ImageFolder == "" {
		c.ImageFolder = "fastqash"
	}

	c.CloudinaryURL = strings.TrimSpace(c.CloudinaryURL)
	c.AdminUsername = strings.TrimSpace(c.AdminUsername)
	c.AdminPassword = strings.TrimSpace(c.AdminPassword)

	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	if c.SiteBaseURL == "" {
		c.SiteBaseURL = "https://www.fastqash.com"
	}

	c.SiteName = strings.TrimSpace(c.SiteName)
	if c.SiteName == "" {
		c.SiteName = "FastQash"
	}

	c.LogDir = strings.TrimSpace(c.LogDir)
	if c.LogDir == "" {
		c.LogDir = "logs"
	}

	if c.HomePerPage == 0 {
		c.HomePerPage = 3
	}
	if c.BlogPerPage == 0 {
		c.BlogPerPage = 9
	}
	if c.AdminPerPage == 0 {
		c.AdminPerPage = 10
	}
}

// Validate 检查配置取值是否合法。
func (c AppConfig) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			names := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				names = append(names, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(names, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Development 表示是否运行在调试模式。
func (c AppConfig) Development() bool {
	return c.GinMode == "debug"
}

// UseCloudinary 表示是否将图片托管到 Cloudinary。
func (c AppConfig) UseCloudinary() bool {
	return c.CloudinaryURL != ""
}

// Database 返回打开数据库所需的参数。
func (c AppConfig) Database(log gormlogger.Interface) db.Config {
	return db.Config{
		Driver: c.DatabaseDriver,
		Path:   c.DatabasePath,
		DSN:    c.DatabaseDSN,
		Logger: log,
	}
}
