package service

import (
	"context"
	"fmt"
	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository"
	"quiz_stats_backend/internal/util"
	"quiz_stats_backend/pkg/cache"
	"quiz_stats_backend/pkg/logger"
	"quiz_stats_backend/pkg/monitoring"
	"quiz_stats_backend/pkg/tracing"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const globalBestCacheKey = "stats:global_best"

func userStatsCacheKey(userID uint) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

type StatisticsService struct {
	PerformanceRepo *repository.PerformanceRepository
	Cache           cache.Cache
	TTL             time.Duration

	group singleflight.Group
	now   func() time.Time
}

func NewStatisticsService(performanceRepo *repository.PerformanceRepository, c cache.Cache, ttl time.Duration) *StatisticsService {
	if c == nil {
		c = cache.Nop{}
	}
	return &StatisticsService{
		PerformanceRepo: performanceRepo,
		Cache:           c,
		TTL:             ttl,
		now:             time.Now,
	}
}

// LevelComparison 用户在某级别的最好成绩与全站最好成绩
type LevelComparison struct {
	Level      string  `json:"level"`
	BestScore  float64 `json:"best_score"`
	GlobalBest float64 `json:"global_best"`
}

// RecordCompletion folds one finished quiz into the user's aggregate for level.
// correctAnswers is clamped to [0, totalQuestions]; a negative totalQuestions
// is rejected.
func (s *StatisticsService) RecordCompletion(ctx context.Context, userID uint, level string, correctAnswers, totalQuestions int) (*model.PerformanceRecord, error) {
	ctx, span := tracing.Start(ctx, "StatisticsService.RecordCompletion")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", int64(userID)), attribute.String("level", level))

	if totalQuestions < 0 {
		return nil, fmt.Errorf("%w: total questions %d", util.ErrInvalidCompletion, totalQuestions)
	}
	completion := model.Completion{
		UserID:         userID,
		Level:          level,
		CorrectAnswers: clampCorrect(correctAnswers, totalQuestions),
		TotalQuestions: totalQuestions,
	}

	before, after, err := s.PerformanceRepo.ApplyCompletion(ctx, completion, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("record completion for user %d level %s: %w", userID, level, err)
	}

	monitoring.QuizCompletions.WithLabelValues(level).Inc()

	keys := []string{userStatsCacheKey(userID)}
	if before.TotalQuizzes == 0 || after.BestScore > before.BestScore {
		keys = append(keys, globalBestCacheKey)
	}
	if err := s.Cache.Delete(ctx, keys...); err != nil {
		logger.L().Warn("statistics cache invalidation failed",
			zap.Uint("user_id", userID),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}

	return &after, nil
}

// clampCorrect 将答对数限制在 [0, total]
func clampCorrect(correct, total int) int {
	if correct < 0 {
		return 0
	}
	if correct > total {
		return total
	}
	return correct
}

// GetUserStatistics 返回用户所有级别的统计，按用户缓存 TTL，RecordCompletion 时失效
func (s *StatisticsService) GetUserStatistics(ctx context.Context, userID uint) ([]model.PerformanceRecord, error) {
	return readThrough(ctx, s, userStatsCacheKey(userID), func() ([]model.PerformanceRecord, error) {
		rows, err := s.PerformanceRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []model.PerformanceRecord{}
		}
		return rows, nil
	})
}

// GetGlobalBestScores 每个级别的全站最高分
func (s *StatisticsService) GetGlobalBestScores(ctx context.Context) (map[string]float64, error) {
	return readThrough(ctx, s, globalBestCacheKey, func() (map[string]float64, error) {
		return s.PerformanceRepo.BestScoresByLevel(ctx)
	})
}

func (s *StatisticsService) GetUserComparison(ctx context.Context, userID uint) ([]LevelComparison, error) {
	records, err := s.GetUserStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}
	global, err := s.GetGlobalBestScores(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LevelComparison, 0, len(records))
	for _, r := range records {
		out = append(out, LevelComparison{
			Level:      r.Level,
			BestScore:  r.BestScore,
			GlobalBest: global[r.Level],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

// readThrough serves key from the cache, or loads it once per key across
// concurrent callers and stores it. Cache failures only cost a reload.
// Results may be shared between callers and must be treated as read-only.
func readThrough[T any](ctx context.Context, s *StatisticsService, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := s.Cache.Get(ctx, key, &cached)
	if err != nil {
		logger.L().Warn("statistics cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		val, err := load()
		if err != nil {
			return nil, err
		}
		if err := s.Cache.Set(ctx, key, val, s.TTL); err != nil {
			logger.L().Warn("statistics cache write failed", zap.String("key", key), zap.Error(err))
		}
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
