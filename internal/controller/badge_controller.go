package controller

import (
	"quiz_stats_backend/internal/service"
	"quiz_stats_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	BadgeService   *service.BadgeService
	StorageService *service.StorageService
}

func NewBadgeController(badgeService *service.BadgeService, storageService *service.StorageService) *BadgeController {
	return &BadgeController{BadgeService: badgeService, StorageService: storageService}
}

// @Summary 获取我的徽章
// @Tags 徽章
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/badges/me [get]
func (c *BadgeController) GetMyBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeService.ListUserBadges(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// @Summary 管理员查看用户徽章
// @Tags 管理员
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/badges/users/{userId} [get]
func (c *BadgeController) GetUserBadges(ctx *gin.Context) {
	userID, err := util.ParseID(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	badges, err := c.BadgeService.ListUserBadges(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// @Summary 上传徽章图片
// @Description 返回的 key 用于配置 badges.*.images
// @Tags 管理员
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} util.Response
// @Router /api/admin/badges/images [post]
func (c *BadgeController) UploadBadgeImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	key, url, err := c.StorageService.UploadBadgeImage(ctx.Request.Context(), file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"key": key, "url": url})
}
