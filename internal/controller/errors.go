package controller

import (
	"errors"
	"net/http"
	"quiz_stats_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 校验错误返回 400，无数据返回 404，其余 500
func respondError(ctx *gin.Context, err error) {
	switch {
	case util.IsValidationError(err):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrNoData):
		util.NotFoundWithMessage(ctx, err.Error())
	case errors.Is(err, util.ErrStorageUnavailable):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
