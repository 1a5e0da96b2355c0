package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_stats_backend/internal/event"
	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository"
	"quiz_stats_backend/pkg/logger"
	"quiz_stats_backend/pkg/monitoring"
	"quiz_stats_backend/pkg/tracing"
	"time"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BadgeService struct {
	BadgeRepo       *repository.BadgeRepository
	PerformanceRepo *repository.PerformanceRepository
	Settings        SettingsProvider
	Publisher       event.Publisher
	Storage         *StorageService

	now func() time.Time
}

func NewBadgeService(
	badgeRepo *repository.BadgeRepository,
	performanceRepo *repository.PerformanceRepository,
	settings SettingsProvider,
	publisher event.Publisher,
	storage *StorageService,
) *BadgeService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &BadgeService{
		BadgeRepo:       badgeRepo,
		PerformanceRepo: performanceRepo,
		Settings:        settings,
		Publisher:       publisher,
		Storage:         storage,
		now:             time.Now,
	}
}

// BadgeCandidate 满足阈值、待颁发的徽章
type BadgeCandidate struct {
	Family    model.BadgeFamilyKind
	Threshold float64
	BadgeName string
	BadgeID   string
}

// BadgeView 返回给 API 的徽章
type BadgeView struct {
	BadgeName string    `json:"badge_name"`
	BadgeID   string    `json:"badge_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	AwardedAt time.Time `json:"awarded_at"`
}

type BadgeAwardedEvent struct {
	UserID    uint                  `json:"user_id"`
	Level     string                `json:"level"`
	Family    model.BadgeFamilyKind `json:"family"`
	BadgeName string                `json:"badge_name"`
	BadgeID   string                `json:"badge_id"`
	AwardedAt time.Time             `json:"awarded_at"`
}

// EligibleBadges lists every tier the user currently qualifies for, in both
// families. All met tiers are returned, not only the highest. Tiers without a
// configured name or image are skipped. Success-rate tiers require at least
// cfg.MinQuizzesForSuccessRate completed quizzes.
func EligibleBadges(cfg model.BadgeConfiguration, level string, completed int, rate float64) []BadgeCandidate {
	if cfg.Disabled {
		return nil
	}

	var out []BadgeCandidate
	collect := func(kind model.BadgeFamilyKind, family model.BadgeFamily, value float64) {
		if !family.Enabled {
			return
		}
		for i, threshold := range family.Thresholds {
			if value < threshold {
				continue
			}
			name, image := family.Tier(i)
			if name == "" || image == "" {
				continue
			}
			out = append(out, BadgeCandidate{
				Family:    kind,
				Threshold: threshold,
				BadgeName: BadgeName(name, level),
				BadgeID:   image,
			})
		}
	}

	collect(model.FamilyCompletion, cfg.Completion, float64(completed))
	if completed >= cfg.MinQuizzesForSuccessRate {
		collect(model.FamilySuccessRate, cfg.SuccessRate, rate)
	}
	return out
}

// BadgeName 徽章名 = 配置名 + 空格 + 首字母大写的级别，如 "Bronze Beginner"
func BadgeName(configured, level string) string {
	return configured + " " + capitalize(level)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// EvaluateAndAwardBadges awards every badge the user qualifies for on level
// and returns the ones that were new. Re-awarding is a no-op. A failed write
// is logged and the remaining candidates are still attempted; the joined
// errors are returned.
func (s *BadgeService) EvaluateAndAwardBadges(ctx context.Context, userID uint, level string) ([]model.BadgeAward, error) {
	ctx, span := tracing.Start(ctx, "BadgeService.EvaluateAndAwardBadges")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", int64(userID)), attribute.String("level", level))

	cfg := s.Settings.BadgeConfiguration()
	if cfg.Disabled {
		return nil, nil
	}

	completed, rate := 0, 0.0
	record, err := s.PerformanceRepo.FindByUserAndLevel(ctx, userID, level)
	switch {
	case err == nil:
		completed, rate = record.TotalQuizzes, record.SuccessRate
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("load performance for user %d level %s: %w", userID, level, err)
	}

	candidates := EligibleBadges(cfg, level, completed, rate)
	if len(candidates) == 0 {
		return nil, nil
	}

	var (
		awarded []model.BadgeAward
		errs    []error
	)
	for _, c := range candidates {
		award := model.BadgeAward{
			UserID:    userID,
			BadgeName: c.BadgeName,
			BadgeID:   c.BadgeID,
			AwardedAt: s.now(),
		}
		created, err := s.BadgeRepo.AwardIfAbsent(ctx, &award)
		if err != nil {
			monitoring.StatisticsWriteErrors.WithLabelValues("award_badge").Inc()
			logger.L().Error("award badge failed",
				zap.Uint("user_id", userID),
				zap.String("level", level),
				zap.String("badge_name", c.BadgeName),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("award %q: %w", c.BadgeName, err))
			continue
		}
		if !created {
			continue
		}

		awarded = append(awarded, award)
		monitoring.BadgesAwarded.WithLabelValues(string(c.Family)).Inc()
		logger.L().Info("badge awarded",
			zap.Uint("user_id", userID),
			zap.String("badge_name", c.BadgeName),
			zap.String("family", string(c.Family)),
		)

		payload := BadgeAwardedEvent{
			UserID:    userID,
			Level:     level,
			Family:    c.Family,
			BadgeName: award.BadgeName,
			BadgeID:   award.BadgeID,
			AwardedAt: award.AwardedAt,
		}
		if err := s.Publisher.Publish(ctx, event.TypeBadgeAwarded, payload); err != nil {
			logger.L().Warn("publish badge event failed", zap.String("badge_name", c.BadgeName), zap.Error(err))
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		return awarded, err
	}
	return awarded, nil
}

// ListUserBadges 用户已获得的徽章，按颁发时间升序
func (s *BadgeService) ListUserBadges(ctx context.Context, userID uint) ([]BadgeView, error) {
	awards, err := s.BadgeRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]BadgeView, 0, len(awards))
	for _, a := range awards {
		views = append(views, BadgeView{
			BadgeName: a.BadgeName,
			BadgeID:   a.BadgeID,
			ImageURL:  s.Storage.ImageURL(a.BadgeID),
			AwardedAt: a.AwardedAt,
		})
	}
	return views, nil
}
