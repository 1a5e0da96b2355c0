// @title Quiz Statistics API
// @version 1.0
// @description 测验统计、徽章与周期统计服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"quiz_stats_backend/internal/app"
	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/pkg/logger"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const configDir = "configs"

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	rollup := flag.String("rollup", "", "立即执行一次周期统计（weekly|monthly）后退出")
	flag.Parse()

	// .env 可选
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg, configDir)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	if *rollup != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		err := application.RunRollup(ctx, *rollup)
		application.Close(ctx)
		if err != nil {
			logger.Log.Fatal("Roll-up failed", zap.String("period_type", *rollup), zap.Error(err))
		}
		logger.Log.Info("Roll-up finished", zap.String("period_type", *rollup))
		return
	}

	application.Serve()
}
