package controller

import (
	"quiz_stats_backend/internal/service"
	"quiz_stats_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LevelController struct {
	Settings service.SettingsProvider
}

func NewLevelController(settings service.SettingsProvider) *LevelController {
	return &LevelController{Settings: settings}
}

// @Summary 获取测验级别
// @Tags 测验
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/levels [get]
func (c *LevelController) ListLevels(ctx *gin.Context) {
	util.Success(ctx, c.Settings.Levels())
}
