// Command fixslugs 按当前标题重新生成所有文章的 slug。
package main

import (
	"context"
	"log"

	"github.com/fastqash/blog/internal/config"
	"github.com/fastqash/blog/internal/db"
	"github.com/fastqash/blog/internal/service"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	gdb, err := db.Open(cfg.Database(gormlogger.Default.LogMode(gormlogger.Warn)))
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	updated, err := service.NewPostService(gdb).RecomputeSlugs(context.Background())
	if err != nil {
		log.Fatalf("更新 slug 失败（已更新 %d 篇）: %v", updated, err)
	}
	log.Printf("slug 更新完成，共修改 %d 篇文章", updated)
}
