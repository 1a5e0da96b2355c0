package app

import (
	"quiz_stats_backend/internal/config"
	"quiz_stats_backend/internal/middleware"
	"quiz_stats_backend/internal/util"
	"quiz_stats_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.GET("/levels", c.level.ListLevels)
		public.GET("/statistics/best-scores", c.statistics.GetGlobalBestScores)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	statistics := rg.Group("/statistics/me")
	{
		statistics.GET("", c.statistics.GetMyStatistics)
		statistics.GET("/comparison", c.statistics.GetMyComparison)
		statistics.GET("/periodic", c.statistics.GetMyPeriodicStatistics)
	}

	rg.GET("/badges/me", c.badge.GetMyBadges)
	rg.POST("/quizzes/completions", c.quiz.CompleteQuiz)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(util.RoleAdmin))
	{
		admin.GET("/statistics/users/:userId", c.statistics.GetUserStatistics)
		admin.POST("/statistics/rollup", c.statistics.RecordPeriodicStatistics)

		admin.GET("/badges/users/:userId", c.badge.GetUserBadges)
		admin.POST("/badges/images", c.badge.UploadBadgeImage)
	}
}
