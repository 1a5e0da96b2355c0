package controller

import (
	"quiz_stats_backend/internal/service"
	"quiz_stats_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type CompleteQuizRequest struct {
	Level          string `json:"level" binding:"required"`
	CorrectAnswers int    `json:"correct_answers"`
	TotalQuestions int    `json:"total_questions"`
}

// @Summary 提交测验结果
// @Description 更新答题统计并颁发新解锁的徽章
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompleteQuizRequest true "测验结果"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/quizzes/completions [post]
func (c *QuizController) CompleteQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.CompleteQuiz(ctx.Request.Context(), user.UserID, req.Level, req.CorrectAnswers, req.TotalQuestions)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
