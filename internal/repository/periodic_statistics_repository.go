package repository

import (
	"context"

	"quiz_stats_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PeriodicStatisticsRepository struct {
	DB *gorm.DB
}

func NewPeriodicStatisticsRepository(db *gorm.DB) *PeriodicStatisticsRepository {
	return &PeriodicStatisticsRepository{DB: db}
}

// Upsert writes the snapshots. A row for the same user, level and window is
// overwritten, so re-running a roll-up does not duplicate history.
func (r *PeriodicStatisticsRepository) Upsert(ctx context.Context, rows []model.PeriodicStatistics) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "level"},
				{Name: "period_type"},
				{Name: "period_start"},
				{Name: "period_end"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_quizzes",
				"total_questions_answered",
				"total_good_answers",
				"success_rate",
				"best_score",
				"created_at",
			}),
		}).
		CreateInBatches(rows, 200).Error
}

func (r *PeriodicStatisticsRepository) FindByUser(ctx context.Context, userID uint, periodType model.PeriodType, limit int) ([]model.PeriodicStatistics, error) {
	var rows []model.PeriodicStatistics
	db := r.DB.WithContext(ctx).
		Where("user_id = ? AND period_type = ?", userID, periodType).
		Order("period_start desc, level asc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
