package service

import (
	"context"
	"errors"
	"fmt"
	"quiz_stats_backend/internal/event"
	"quiz_stats_backend/internal/model"
	"quiz_stats_backend/internal/repository"
	"quiz_stats_backend/internal/util"
	"quiz_stats_backend/pkg/logger"
	"quiz_stats_backend/pkg/monitoring"
	"quiz_stats_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MaxManualWindowDays 手动补录允许的最大跨度（自然日）
const MaxManualWindowDays = 365

type RollupService struct {
	PerformanceRepo *repository.PerformanceRepository
	PeriodicRepo    *repository.PeriodicStatisticsRepository
	Publisher       event.Publisher

	now func() time.Time
}

func NewRollupService(
	performanceRepo *repository.PerformanceRepository,
	periodicRepo *repository.PeriodicStatisticsRepository,
	publisher event.Publisher,
) *RollupService {
	if publisher == nil {
		publisher = event.Nop{}
	}
	return &RollupService{
		PerformanceRepo: performanceRepo,
		PeriodicRepo:    periodicRepo,
		Publisher:       publisher,
		now:             time.Now,
	}
}

type RollupEvent struct {
	PeriodType model.PeriodType `json:"period_type"`
	StartDate  string           `json:"start_date"`
	EndDate    string           `json:"end_date"`
	UserID     *uint            `json:"user_id,omitempty"`
	Rows       int              `json:"rows"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeeklyWindow is the Sunday-to-Sunday week ending on the most recent Sunday
// strictly before today.
func WeeklyWindow(now time.Time) (start, end time.Time) {
	today := startOfDay(now)
	back := int(today.Weekday())
	if back == 0 {
		back = 7
	}
	end = today.AddDate(0, 0, -back)
	start = end.AddDate(0, 0, -7)
	return start, end
}

// MonthlyWindow 上一个自然月的第一天到最后一天
func MonthlyWindow(now time.Time) (start, end time.Time) {
	today := startOfDay(now)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	start = firstOfMonth.AddDate(0, -1, 0)
	end = firstOfMonth.AddDate(0, 0, -1)
	return start, end
}

// ParseManualWindow validates an operator supplied window. Dates use the
// YYYY-MM-DD layout, end must be after start, the span is capped at one year
// and end may not lie in the future.
func ParseManualWindow(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	start, err = time.ParseInLocation(util.DateFormat, startStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", util.ErrInvalidDate, startStr)
	}
	end, err = time.ParseInLocation(util.DateFormat, endStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", util.ErrInvalidDate, endStr)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s is not after %s", util.ErrInvalidWindow, endStr, startStr)
	}
	if end.After(start.AddDate(0, 0, MaxManualWindowDays)) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s to %s", util.ErrWindowTooLarge, startStr, endStr)
	}
	if end.After(startOfDay(now)) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", util.ErrFutureEndDate, endStr)
	}
	return start, end, nil
}

// RecordPeriodicStatistics snapshots every record whose last update falls on
// a day in [start, end] and returns the number of rows written. A window with
// no activity yields util.ErrNoData.
func (s *RollupService) RecordPeriodicStatistics(ctx context.Context, periodType model.PeriodType, start, end time.Time, userID *uint) (int, error) {
	ctx, span := tracing.Start(ctx, "RollupService.RecordPeriodicStatistics")
	defer span.End()
	span.SetAttributes(
		attribute.String("period_type", string(periodType)),
		attribute.String("start", start.Format(util.DateFormat)),
		attribute.String("end", end.Format(util.DateFormat)),
	)

	if !periodType.Valid() {
		return 0, fmt.Errorf("%w: %q", util.ErrInvalidPeriodType, periodType)
	}

	start = startOfDay(start)
	end = startOfDay(end)
	records, err := s.PerformanceRepo.FindUpdatedBetween(ctx, start, end.AddDate(0, 0, 1), userID)
	if err != nil {
		monitoring.StatisticsWriteErrors.WithLabelValues("rollup").Inc()
		span.RecordError(err)
		return 0, fmt.Errorf("load records for %s roll-up: %w", periodType, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: %s %s to %s", util.ErrNoData, periodType,
			start.Format(util.DateFormat), end.Format(util.DateFormat))
	}

	now := s.now()
	rows := make([]model.PeriodicStatistics, 0, len(records))
	for _, r := range records {
		rows = append(rows, model.SnapshotOf(r, periodType, start, end, now))
	}

	if err := s.PeriodicRepo.Upsert(ctx, rows); err != nil {
		monitoring.StatisticsWriteErrors.WithLabelValues("rollup").Inc()
		span.RecordError(err)
		return 0, fmt.Errorf("write %s roll-up: %w", periodType, err)
	}

	monitoring.RollupRows.WithLabelValues(string(periodType)).Add(float64(len(rows)))
	logger.L().Info("periodic statistics recorded",
		zap.String("period_type", string(periodType)),
		zap.String("start", start.Format(util.DateFormat)),
		zap.String("end", end.Format(util.DateFormat)),
		zap.Int("rows", len(rows)),
	)

	payload := RollupEvent{
		PeriodType: periodType,
		StartDate:  start.Format(util.DateFormat),
		EndDate:    end.Format(util.DateFormat),
		UserID:     userID,
		Rows:       len(rows),
	}
	if err := s.Publisher.Publish(ctx, event.TypeStatisticsRollup, payload); err != nil {
		logger.L().Warn("publish rollup event failed", zap.Error(err))
	}

	return len(rows), nil
}

func (s *RollupService) RunWeekly(ctx context.Context) error {
	start, end := WeeklyWindow(s.now())
	return s.runScheduled(ctx, model.PeriodWeekly, start, end)
}

func (s *RollupService) RunMonthly(ctx context.Context) error {
	start, end := MonthlyWindow(s.now())
	return s.runScheduled(ctx, model.PeriodMonthly, start, end)
}

func (s *RollupService) runScheduled(ctx context.Context, periodType model.PeriodType, start, end time.Time) error {
	_, err := s.RecordPeriodicStatistics(ctx, periodType, start, end, nil)
	if errors.Is(err, util.ErrNoData) {
		logger.L().Info("no activity in roll-up window",
			zap.String("period_type", string(periodType)),
			zap.String("start", start.Format(util.DateFormat)),
			zap.String("end", end.Format(util.DateFormat)),
		)
		return nil
	}
	return err
}

// RecordManual 管理员手动补录指定时间段
func (s *RollupService) RecordManual(ctx context.Context, periodType, startDate, endDate string, userID *uint) (int, error) {
	pt := model.PeriodType(periodType)
	if !pt.Valid() {
		return 0, fmt.Errorf("%w: %q", util.ErrInvalidPeriodType, periodType)
	}
	start, end, err := ParseManualWindow(startDate, endDate, s.now())
	if err != nil {
		return 0, err
	}
	return s.RecordPeriodicStatistics(ctx, pt, start, end, userID)
}

// GetPeriodicStatistics 用户历史快照，最新的在前
func (s *RollupService) GetPeriodicStatistics(ctx context.Context, userID uint, periodType string, limit int) ([]model.PeriodicStatistics, error) {
	pt := model.PeriodType(periodType)
	if !pt.Valid() {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidPeriodType, periodType)
	}
	rows, err := s.PeriodicRepo.FindByUser(ctx, userID, pt, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.PeriodicStatistics{}
	}
	return rows, nil
}
