package service

import (
	"context"
	"fmt"
	"strings"
	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/util"
	"quiz_stats_backend/pkg/logger"
	"quiz_stats_backend/pkg/tracing"

	"go.uber.org/zap"
)

// QuizService 测验完成流程：先更新统计，再评估徽章
type QuizService struct {
	Statistics *StatisticsService
	Badges     *BadgeService
	Settings   SettingsProvider
}

func NewQuizService(statistics *StatisticsService, badges *BadgeService, settings SettingsProvider) *QuizService {
	return &QuizService{
		Statistics: statistics,
		Badges:     badges,
		Settings:   settings,
	}
}

type CompletionResult struct {
	Record    *model.PerformanceRecord `json:"record,omitempty"`
	Score     float64                  `json:"score"`
	NewBadges []model.BadgeAward       `json:"new_badges"`
}

// CompleteQuiz records a finished quiz and awards any badges it unlocks.
// Only invalid input is returned as an error. Statistics and badge write
// failures are logged and the partial result is returned.
func (s *QuizService) CompleteQuiz(ctx context.Context, userID uint, level string, correctAnswers, totalQuestions int) (*CompletionResult, error) {
	ctx, span := tracing.Start(ctx, "QuizService.CompleteQuiz")
	defer span.End()

	// 配置中的级别 key 由 viper 统一转为小写
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return nil, fmt.Errorf("%w: level is required", util.ErrInvalidCompletion)
	}
	if totalQuestions < 0 {
		return nil, fmt.Errorf("%w: total questions %d", util.ErrInvalidCompletion, totalQuestions)
	}
	if len(s.Settings.Levels()) > 0 {
		if _, ok := s.Settings.Level(level); !ok {
			return nil, fmt.Errorf("%w: %s", util.ErrLevelNotFound, level)
		}
	}

	result := &CompletionResult{NewBadges: []model.BadgeAward{}}

	record, err := s.Statistics.RecordCompletion(ctx, userID, level, correctAnswers, totalQuestions)
	if err != nil {
		logger.L().Error("record quiz completion failed",
			zap.Uint("user_id", userID),
			zap.String("level", level),
			zap.Int("correct_answers", correctAnswers),
			zap.Int("total_questions", totalQuestions),
			zap.Error(err),
		)
	} else {
		result.Record = record
	}

	result.Score = model.Completion{
		CorrectAnswers: clampCorrect(correctAnswers, totalQuestions),
		TotalQuestions: totalQuestions,
	}.Score()

	awarded, err := s.Badges.EvaluateAndAwardBadges(ctx, userID, level)
	if err != nil {
		logger.L().Error("evaluate badges failed",
			zap.Uint("user_id", userID),
			zap.String("level", level),
			zap.Error(err),
		)
	}
	result.NewBadges = append(result.NewBadges, awarded...)

	return result, nil
}
