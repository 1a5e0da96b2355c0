package controller

import (
	"quiz_stats_backend/internal/service"
	"quiz_stats_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	StatisticsService *service.StatisticsService
	RollupService     *service.RollupService
}

func NewStatisticsController(statisticsService *service.StatisticsService, rollupService *service.RollupService) *StatisticsController {
	return &StatisticsController{
		StatisticsService: statisticsService,
		RollupService:     rollupService,
	}
}

// @Summary 获取我的答题统计
// @Description 返回当前用户每个级别的累计统计
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/statistics/me [get]
func (c *StatisticsController) GetMyStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatisticsService.GetUserStatistics(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 我的最好成绩与全站最好成绩对比
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/statistics/me/comparison [get]
func (c *StatisticsController) GetMyComparison(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	comparison, err := c.StatisticsService.GetUserComparison(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, comparison)
}

// @Summary 我的周期统计历史
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Param period_type query string false "weekly 或 monthly" default(weekly)
// @Param limit query int false "返回数量" default(12)
// @Success 200 {object} util.Response
// @Router /api/statistics/me/periodic [get]
func (c *StatisticsController) GetMyPeriodicStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	periodType := ctx.DefaultQuery("period_type", "weekly")
	limit := 12
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	rows, err := c.RollupService.GetPeriodicStatistics(ctx.Request.Context(), user.UserID, periodType, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 各级别全站最高分
// @Tags 统计
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/statistics/best-scores [get]
func (c *StatisticsController) GetGlobalBestScores(ctx *gin.Context) {
	scores, err := c.StatisticsService.GetGlobalBestScores(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, scores)
}

// @Summary 管理员查看用户统计
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/statistics/users/{userId} [get]
func (c *StatisticsController) GetUserStatistics(ctx *gin.Context) {
	userID, err := util.ParseID(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stats, err := c.StatisticsService.GetUserStatistics(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

type RollupRequest struct {
	PeriodType string `json:"period_type" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	UserID     *uint  `json:"user_id"`
}

// @Summary 手动生成周期统计
// @Description 为指定时间段生成 weekly/monthly 统计快照，重复执行会覆盖同一时间段的快照
// @Tags 管理员
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RollupRequest true "时间段"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/statistics/rollup [post]
func (c *StatisticsController) RecordPeriodicStatistics(ctx *gin.Context) {
	var req RollupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rows, err := c.RollupService.RecordManual(ctx.Request.Context(), req.PeriodType, req.StartDate, req.EndDate, req.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rows": rows})
}
